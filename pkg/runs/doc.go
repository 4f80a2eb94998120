/*
Package runs manages completed traces as persisted reports.

A Manager assigns every run an ID, measures it, stores the resulting
domain.Report in a ports.ReportStore and remembers which request produced
it. Because tracing is deterministic, a repeated request (same machine,
input and depth budget) is answered from the stored report instead of
being traced again.

Concurrent identical requests are serialized with a reference-counted
local lock and, when configured, a ports.DistributedLocker shared by
replicas.
*/
package runs
