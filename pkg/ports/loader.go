package ports

// MachineLoader defines how the tracer retrieves machine definitions.
// This allows the storage layer (Loam, FS, Memory) to be decoupled.
type MachineLoader interface {
	// GetMachine retrieves the raw definition of a machine by name.
	// It returns the raw bytes (which the compiler will parse) or an error
	// wrapping domain.ErrMachineNotFound.
	GetMachine(name string) ([]byte, error)

	// ListMachines returns the names of every available machine, sorted.
	ListMachines() ([]string, error)
}
