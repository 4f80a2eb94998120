/*
Package domain contains the core domain models of the ntmtrace simulator.

It defines the vocabulary of a nondeterministic single-tape Turing machine
(symbols, moves, transitions, machine definitions) and the values produced
while tracing one (configurations, verdicts, results and trace records).
This package is kept pure and free of I/O or persistence, following
Hexagonal Architecture principles.

# Key Entities

  - Machine: the immutable definition (states, alphabets, blank, rules).
  - Transition: one rule (state, read) -> (next, write, move).
  - Configuration: one snapshot of the tape split at the head plus the control state.
  - Result: the outcome of a bounded breadth-first trace (Accepted, Rejected, Undecided).
  - Record: a human-readable trace line handed to an output sink.
*/
package domain
