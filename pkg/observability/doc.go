/*
Package observability provides tools for monitoring the ntmtrace engine.

Everything here is driven by domain.LifecycleHooks: the engine forwards
its context to every hook, so callers tag the context with the machine
being traced (WithMachine) and the hooks label metrics and log lines with
it. Hooks observe a trace; they never steer it.
*/
package observability
