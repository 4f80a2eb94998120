package runtime

import (
	"slices"

	"github.com/aretw0/ntmtrace/pkg/domain"
)

// Ancestry is the per-run arena of generated configurations.
// Every configuration gets its slot index as identity, so structurally
// equal siblings stay distinct tree nodes.
type Ancestry struct {
	nodes   []domain.Configuration
	parents map[domain.ConfigID]domain.ConfigID
}

// NewAncestry creates an empty arena.
func NewAncestry() *Ancestry {
	return &Ancestry{parents: make(map[domain.ConfigID]domain.ConfigID)}
}

// Add assigns the next identity to cfg, records its parent and returns the stamped value.
func (a *Ancestry) Add(cfg domain.Configuration, parent domain.ConfigID) domain.Configuration {
	cfg.ID = domain.ConfigID(len(a.nodes))
	a.nodes = append(a.nodes, cfg)
	a.parents[cfg.ID] = parent
	return cfg
}

// Len returns the number of configurations generated so far.
func (a *Ancestry) Len() int {
	return len(a.nodes)
}

// Reconstruct follows parent links from id back to the root and returns
// the path root-first. It never mutates the arena.
func (a *Ancestry) Reconstruct(id domain.ConfigID) ([]domain.Configuration, error) {
	var path []domain.Configuration

	for cur := id; cur != domain.NoParent; {
		if len(path) > len(a.nodes) {
			return nil, &domain.ReconstructionError{ID: id, Reason: "parent chain does not reach the root"}
		}
		if cur < 0 || int(cur) >= len(a.nodes) {
			return nil, &domain.ReconstructionError{ID: cur, Reason: "unknown configuration"}
		}
		parent, ok := a.parents[cur]
		if !ok {
			return nil, &domain.ReconstructionError{ID: cur, Reason: "missing ancestry entry"}
		}
		path = append(path, a.nodes[cur])
		cur = parent
	}

	slices.Reverse(path)
	return path, nil
}
