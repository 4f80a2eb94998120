package tests

import (
	"errors"
	"testing"

	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/aretw0/ntmtrace/pkg/ports"
)

// MachineLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.MachineLoader.
// setupData maps machine names to the exact bytes the loader is expected to return.
func MachineLoaderContractTest(t *testing.T, loader ports.MachineLoader, setupData map[string][]byte) {
	t.Helper()

	t.Run("GetMachine_Success", func(t *testing.T) {
		for name, expected := range setupData {
			content, err := loader.GetMachine(name)
			if err != nil {
				t.Fatalf("unexpected error getting machine %s: %v", name, err)
			}
			if expected != nil && string(content) != string(expected) {
				t.Errorf("content mismatch for %s. got %q, want %q", name, content, expected)
			}
		}
	})

	t.Run("GetMachine_NotFound", func(t *testing.T) {
		_, err := loader.GetMachine("non-existent-machine")
		if err == nil {
			t.Fatal("expected error for non-existent machine, got nil")
		}
		if !errors.Is(err, domain.ErrMachineNotFound) {
			t.Errorf("expected ErrMachineNotFound, got %v", err)
		}
	})

	t.Run("ListMachines", func(t *testing.T) {
		names, err := loader.ListMachines()
		if err != nil {
			t.Fatalf("unexpected error listing machines: %v", err)
		}

		if len(names) != len(setupData) {
			t.Errorf("expected %d machines, got %d (%v)", len(setupData), len(names), names)
		}

		lookup := make(map[string]bool)
		for _, name := range names {
			lookup[name] = true
		}
		for name := range setupData {
			if !lookup[name] {
				t.Errorf("machine %s missing from list", name)
			}
		}

		for i := 1; i < len(names); i++ {
			if names[i-1] > names[i] {
				t.Errorf("machine list is not sorted: %v", names)
				break
			}
		}
	})
}
