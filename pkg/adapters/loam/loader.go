package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/ntmtrace/pkg/domain"
)

// Loader adapts the Loam library to the MachineLoader interface.
// Each document describes one machine; its frontmatter carries the
// definition and its body (if any) becomes the description.
type Loader struct {
	Repo *loam.TypedRepository[MachineMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[MachineMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// GetMachine retrieves a machine from the Loam repository and re-encodes it
// as JSON for the compiler.
func (l *Loader) GetMachine(name string) ([]byte, error) {
	ctx := context.Background()

	doc, err := l.Repo.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: loam get failed for %s: %v", domain.ErrMachineNotFound, name, err)
	}

	data := buildMachineData(doc.ID, doc.Data, doc.Content)

	bytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal machine data: %w", err)
	}
	return bytes, nil
}

func buildMachineData(docID string, meta MachineMetadata, content string) map[string]any {
	data := make(map[string]any)

	name := meta.Name
	if name == "" {
		name = docID
	}
	data["name"] = trimExtension(name)

	description := meta.Description
	if description == "" {
		description = strings.TrimSpace(content)
	}
	if description != "" {
		data["description"] = description
	}

	data["states"] = meta.States
	data["input_alphabet"] = meta.InputAlphabet
	data["tape_alphabet"] = meta.TapeAlphabet
	if meta.Blank != nil {
		data["blank"] = meta.Blank
	}
	data["start"] = meta.Start
	data["accept"] = meta.Accept
	data["reject"] = meta.Reject

	// "rules" is accepted as an alias; both lists keep their order.
	rules := make([]any, 0, len(meta.Transitions)+len(meta.Rules))
	rules = append(rules, meta.Transitions...)
	rules = append(rules, meta.Rules...)
	data["transitions"] = normalizeRules(rules)

	return data
}

// normalizeRules converts YAML's map[any]any into JSON-encodable maps.
func normalizeRules(rules []any) []any {
	out := make([]any, len(rules))
	for i, r := range rules {
		if m, ok := r.(map[any]any); ok {
			converted := make(map[string]any, len(m))
			for k, v := range m {
				converted[fmt.Sprintf("%v", k)] = v
			}
			out[i] = converted
			continue
		}
		out[i] = r
	}
	return out
}

// ListMachines lists all machines in the repository.
func (l *Loader) ListMachines() ([]string, error) {
	ctx := context.Background()
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	names := make([]string, 0, len(docs))

	for _, doc := range docs {
		// Use the name from metadata if available, otherwise the file ID
		raw := doc.Data.Name
		if raw == "" {
			raw = doc.ID
		}
		name := trimExtension(raw)

		if existingPath, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: machine '%s' is defined in both '%s' and '%s'", name, existingPath, doc.ID)
		}
		seen[name] = doc.ID
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
