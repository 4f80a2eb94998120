/*
Package report turns a finished trace into human-readable records and
delivers them to one or more sinks.

The engine only returns a structured domain.Result; this package owns the
console/file wording:

	Tracing NTM: <machine> on input '<input>'
	String accepted in N steps.

	Trace path:
	Step 0:  <left> [<state>] <right>

Sinks implement ports.TraceSink. TextSink writes to a terminal or any
io.Writer (colored only when the writer is a terminal), JSONSink writes
one JSON object per record and Multi fans a record out to several sinks.
*/
package report
