/*
Package ports defines the driven ports (interfaces) of the ntmtrace simulator.

These interfaces decouple the core search from external implementations,
allowing the engine to work with various definition sources, report stores
and trace outputs.

# Key Interfaces

  - MachineLoader: Responsible for loading raw machine definitions (Memory, Files, Loam).
  - TransitionResolver: The state/transition lookup capability consumed by the engine.
  - TraceSink: The output capability that receives human-readable trace records.
  - ReportStore: Responsible for persisting completed run reports.
  - DistributedLocker: Provides distributed locking so replicas do not trace the same run twice.
*/
package ports
