/*
Package ntmtrace traces nondeterministic single-tape Turing machines
breadth first.

Given a machine definition and an input word, the tracer expands the tree
of configurations level by level, following every applicable rule, until a
branch reaches the accept state (Accepted), every branch dies (Rejected)
or the step budget runs out (Undecided). For an accepted word the path
from the initial configuration to the accepting one is reconstructed and
reported step by step.

# Machines

Definitions are read from a directory. YAML and JSON documents and a
classic line format are supported:

	name: a_star
	states: [q0, qAccept, qReject]
	input_alphabet: [a]
	tape_alphabet: [a, _]
	start: q0
	accept: qAccept
	reject: qReject
	transitions:
	  - q0,a,q0,a,R
	  - q0,_,qAccept,_,S

# Usage

	tracer, err := ntmtrace.New("./machines")
	if err != nil {
		log.Fatal(err)
	}

	rep, err := tracer.Trace(ctx, "a_star", "aa", 100)
	if err != nil {
		log.Fatal(err)
	}

	// Tracing NTM: a_star on input 'aa'
	// String accepted in 3 steps.
	// ...
	_ = tracer.Emit(ctx, rep, report.NewTextSink(os.Stdout))
*/
package ntmtrace
