package memory

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aretw0/ntmtrace/pkg/domain"
)

// Loader implements ports.MachineLoader using an in-memory map.
type Loader struct {
	machines map[string][]byte
}

// NewLoader creates a new Loader with the provided raw definitions
// (YAML, JSON or classic text), keyed by machine name.
func NewLoader(data map[string]string) *Loader {
	machines := make(map[string][]byte)
	for k, v := range data {
		machines[k] = []byte(v)
	}
	return &Loader{
		machines: machines,
	}
}

// NewFromMachines creates a new Loader from domain objects.
// This handles serialization automatically, improving DX for tests.
func NewFromMachines(machines ...domain.Machine) (*Loader, error) {
	data := make(map[string][]byte)
	for _, m := range machines {
		if m.Name == "" {
			return nil, fmt.Errorf("machine missing name")
		}
		bytes, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal machine %s: %w", m.Name, err)
		}
		data[m.Name] = bytes
	}
	return &Loader{machines: data}, nil
}

// GetMachine retrieves the raw definition of a machine by name.
func (l *Loader) GetMachine(name string) ([]byte, error) {
	content, ok := l.machines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrMachineNotFound, name)
	}
	return content, nil
}

// ListMachines returns all available machine names.
func (l *Loader) ListMachines() ([]string, error) {
	keys := make([]string, 0, len(l.machines))
	for k := range l.machines {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
