package observability

import "context"

type machineKey struct{}

// WithMachine tags ctx with the name of the machine being traced.
func WithMachine(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, machineKey{}, name)
}

// MachineFrom returns the machine tagged by WithMachine, or "unknown".
func MachineFrom(ctx context.Context) string {
	if name, ok := ctx.Value(machineKey{}).(string); ok && name != "" {
		return name
	}
	return "unknown"
}
