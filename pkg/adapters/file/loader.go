package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/ntmtrace/pkg/domain"
)

// Extensions lists the machine file suffixes the Loader recognizes, in
// lookup order.
var Extensions = []string{".yaml", ".yml", ".json", ".tm", ".txt"}

// Loader implements ports.MachineLoader over a flat directory of machine
// files. The machine name is the file name without its extension.
type Loader struct {
	dir    string
	ignore map[string]bool
}

// NewLoader creates a loader rooted at dir. Files named in ignore (for
// example the project config file) are never treated as machines.
func NewLoader(dir string, ignore ...string) *Loader {
	skip := make(map[string]bool, len(ignore))
	for _, name := range ignore {
		skip[name] = true
	}
	return &Loader{dir: dir, ignore: skip}
}

// GetMachine reads the first file named name with a known extension.
func (l *Loader) GetMachine(name string) ([]byte, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: invalid name %q", domain.ErrMachineNotFound, name)
	}
	for _, ext := range Extensions {
		filename := name + ext
		if l.ignore[filename] {
			continue
		}
		data, err := os.ReadFile(filepath.Join(l.dir, filename))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read machine %s: %w", name, err)
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrMachineNotFound, name)
}

// ListMachines returns every machine name in the directory, sorted.
// Two files with the same base name are reported as a collision.
func (l *Loader) ListMachines() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}

	seen := make(map[string]string)
	var names []string
	for _, entry := range entries {
		filename := entry.Name()
		ext := filepath.Ext(filename)
		if entry.IsDir() || l.ignore[filename] || strings.HasPrefix(filename, ".") || !slices.Contains(Extensions, ext) {
			continue
		}
		name := strings.TrimSuffix(filename, ext)
		if existing, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: machine '%s' is defined in both '%s' and '%s'", name, existing, filename)
		}
		seen[name] = filename
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}
