package runtime

import (
	"slices"

	"github.com/aretw0/ntmtrace/pkg/domain"
)

type ruleKey struct {
	state string
	read  domain.Symbol
}

// TableResolver answers transition lookups from a fixed rule table.
// Rules sharing a (state, read) pair are returned in declaration order.
type TableResolver struct {
	rules map[ruleKey][]domain.Transition
}

// NewTableResolver indexes the given transitions.
func NewTableResolver(transitions []domain.Transition) *TableResolver {
	rules := make(map[ruleKey][]domain.Transition)
	for _, t := range transitions {
		k := ruleKey{state: t.From, read: t.Read}
		rules[k] = append(rules[k], t)
	}
	return &TableResolver{rules: rules}
}

// Resolve returns a copy of every rule for (state, read); nil means implicit reject.
func (r *TableResolver) Resolve(state string, read domain.Symbol) []domain.Transition {
	return slices.Clone(r.rules[ruleKey{state: state, read: read}])
}
