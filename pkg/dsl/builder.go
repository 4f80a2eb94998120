package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/ntmtrace/pkg/adapters/memory"
	"github.com/aretw0/ntmtrace/pkg/domain"
)

// Builder collects machine definitions.
type Builder struct {
	machines map[string]*MachineBuilder
	order    []string
}

// New creates a new machine set builder.
func New() *Builder {
	return &Builder{
		machines: make(map[string]*MachineBuilder),
	}
}

// Add starts a machine definition.
// If the machine already exists, it returns the existing builder.
func (b *Builder) Add(name string) *MachineBuilder {
	if mb, ok := b.machines[name]; ok {
		return mb
	}
	mb := &MachineBuilder{
		machine: domain.Machine{
			Name:  name,
			Blank: domain.DefaultBlank,
		},
	}
	b.machines[name] = mb
	b.order = append(b.order, name)
	return mb
}

// Build compiles every machine into a memory loader.
func (b *Builder) Build() (*memory.Loader, error) {
	machines := make([]domain.Machine, 0, len(b.order))
	var errs []error
	for _, name := range b.order {
		m, err := b.machines[name].Build()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		machines = append(machines, m)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	loader, err := memory.NewFromMachines(machines...)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
