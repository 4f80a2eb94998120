package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/ntmtrace/internal/runtime"
	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	accept = "qAccept"
	reject = "qReject"
	blank  = domain.DefaultBlank
)

func rule(from string, read domain.Symbol, to string, write domain.Symbol, move domain.Move) domain.Transition {
	return domain.Transition{From: from, Read: read, To: to, Write: write, Move: move}
}

// aStar accepts a*.
var aStar = []domain.Transition{
	rule("q0", "a", "q0", "a", domain.MoveRight),
	rule("q0", blank, accept, blank, domain.MoveStay),
}

// containsAB guesses where "ab" starts.
var containsAB = []domain.Transition{
	rule("q0", "a", "q0", "a", domain.MoveRight),
	rule("q0", "b", "q0", "b", domain.MoveRight),
	rule("q0", "a", "q1", "a", domain.MoveRight),
	rule("q1", "b", accept, "b", domain.MoveStay),
}

func simulate(t *testing.T, rules []domain.Transition, input string, maxDepth int, opts ...runtime.EngineOption) *domain.Result {
	t.Helper()
	engine := runtime.NewEngine(runtime.NewTableResolver(rules), opts...)
	initial := domain.InitialConfiguration("q0", domain.TapeFromString(input))
	result, err := engine.Simulate(context.Background(), initial, accept, reject, maxDepth)
	require.NoError(t, err)
	return result
}

func pathStrings(path []domain.Configuration) [][3]string {
	out := make([][3]string, len(path))
	for i, c := range path {
		out[i] = [3]string{c.Left.String(), c.State, c.Right.String()}
	}
	return out
}

func TestEngine_Simulate_AcceptsAStar(t *testing.T) {
	result := simulate(t, aStar, "aa", 5)

	assert.Equal(t, domain.VerdictAccepted, result.Verdict)
	assert.Equal(t, 3, result.Depth)
	assert.Equal(t, [][3]string{
		{"", "q0", "aa"},
		{"a", "q0", "a"},
		{"aa", "q0", ""},
		{"aa", accept, "_"},
	}, pathStrings(result.Path))
	assert.Len(t, result.Path, result.Depth+1)
}

func TestEngine_Simulate_RejectsOnMissingRule(t *testing.T) {
	result := simulate(t, aStar, "ab", 5)

	assert.Equal(t, domain.VerdictRejected, result.Verdict)
	assert.Equal(t, 1, result.Depth)
	assert.Empty(t, result.Path)
	require.Len(t, result.Levels, 2)
	assert.Equal(t, 1, result.Levels[1].ImplicitRejects)
	assert.Equal(t, 0, result.Levels[1].ExplicitRejects)
}

func TestEngine_Simulate_ExplicitReject(t *testing.T) {
	rules := []domain.Transition{rule("q0", "a", reject, "a", domain.MoveStay)}

	result := simulate(t, rules, "a", 5)

	assert.Equal(t, domain.VerdictRejected, result.Verdict)
	assert.Equal(t, 1, result.Depth)
	require.Len(t, result.Levels, 2)
	assert.Equal(t, 1, result.Levels[1].ExplicitRejects)
}

func TestEngine_Simulate_UndecidedAtCap(t *testing.T) {
	loop := []domain.Transition{
		rule("q0", "a", "q0", "a", domain.MoveRight),
		rule("q0", blank, "q0", blank, domain.MoveRight),
	}

	result := simulate(t, loop, "a", 3)

	assert.Equal(t, domain.VerdictUndecided, result.Verdict)
	assert.True(t, result.CapReached())
	assert.Equal(t, 3, result.Depth)
	assert.Len(t, result.Levels, 3)
	assert.Empty(t, result.Path)
}

func TestEngine_Simulate_ZeroDepth(t *testing.T) {
	result := simulate(t, aStar, "", 0)

	assert.Equal(t, domain.VerdictUndecided, result.Verdict)
	assert.Equal(t, 0, result.Depth)
	assert.Empty(t, result.Levels)
}

func TestEngine_Simulate_NegativeDepth(t *testing.T) {
	engine := runtime.NewEngine(runtime.NewTableResolver(aStar))
	_, err := engine.Simulate(context.Background(), domain.InitialConfiguration("q0", nil), accept, reject, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidDepth)
}

func TestEngine_Simulate_NondeterministicGuess(t *testing.T) {
	result := simulate(t, containsAB, "aab", 10)

	require.Equal(t, domain.VerdictAccepted, result.Verdict)
	assert.Equal(t, 3, result.Depth)
	assert.Equal(t, [][3]string{
		{"", "q0", "aab"},
		{"a", "q0", "ab"},
		{"aa", "q1", "b"},
		{"aa", accept, "b"},
	}, pathStrings(result.Path))

	// level 1 holds both guesses made on the first 'a'
	assert.Equal(t, 2, result.Levels[1].Width)
	assert.Equal(t, 1, result.Levels[1].ImplicitRejects)
}

func TestEngine_Simulate_MinimalAcceptingDepth(t *testing.T) {
	// One branch accepts immediately, the other only after walking the input.
	rules := []domain.Transition{
		rule("q0", "a", "q1", "a", domain.MoveRight),
		rule("q0", "a", accept, "a", domain.MoveStay),
		rule("q1", "a", "q1", "a", domain.MoveRight),
		rule("q1", blank, accept, blank, domain.MoveStay),
	}

	result := simulate(t, rules, "aaaa", 20)

	assert.Equal(t, domain.VerdictAccepted, result.Verdict)
	assert.Equal(t, 1, result.Depth)
	assert.Len(t, result.Path, 2)
}

func TestEngine_Simulate_FirstAcceptanceInScanOrderWins(t *testing.T) {
	rules := []domain.Transition{
		rule("q0", "a", accept, "x", domain.MoveStay),
		rule("q0", "a", accept, "y", domain.MoveStay),
	}
	var levels []domain.LevelStats
	hooks := domain.LifecycleHooks{
		OnLevel: func(ctx context.Context, e *domain.LevelEvent) {
			levels = append(levels, e.Stats)
		},
	}

	result := simulate(t, rules, "a", 5, runtime.WithLifecycleHooks(hooks))

	require.Equal(t, domain.VerdictAccepted, result.Verdict)
	assert.Equal(t, "x", result.Path[1].Right.String())
	require.Len(t, levels, 2)
	assert.Equal(t, 2, levels[1].Width)
	assert.Equal(t, 1, levels[1].Scanned, "remaining siblings must not be scanned")
}

func TestEngine_Simulate_KeepsStructurallyEqualBranches(t *testing.T) {
	rules := []domain.Transition{
		rule("q0", "a", "q1", "a", domain.MoveStay),
		rule("q0", "a", "q1", "a", domain.MoveStay),
		rule("q1", "a", "q2", "a", domain.MoveStay),
		rule("q2", "a", "q2", "a", domain.MoveStay),
	}

	result := simulate(t, rules, "a", 3)

	assert.Equal(t, domain.VerdictUndecided, result.Verdict)
	require.Len(t, result.Levels, 3)
	assert.Equal(t, 2, result.Levels[1].Width)
	assert.Equal(t, 2, result.Levels[2].Width)
}

func TestEngine_Simulate_PathUsesIdentityNotValue(t *testing.T) {
	rules := []domain.Transition{
		rule("q0", "a", "q1", "a", domain.MoveStay),
		rule("q0", "a", "q1", "a", domain.MoveStay),
		rule("q1", "a", accept, "a", domain.MoveStay),
	}

	result := simulate(t, rules, "a", 5)

	require.Equal(t, domain.VerdictAccepted, result.Verdict)
	require.Len(t, result.Path, 3)
	assert.Equal(t, domain.ConfigID(0), result.Path[0].ID)
	assert.Equal(t, domain.ConfigID(1), result.Path[1].ID)
	assert.Equal(t, domain.ConfigID(3), result.Path[2].ID)
}

func TestEngine_Simulate_IsDeterministic(t *testing.T) {
	first := simulate(t, containsAB, "babab", 12)
	for i := 0; i < 5; i++ {
		again := simulate(t, containsAB, "babab", 12)
		assert.Equal(t, first, again)
	}
}

func TestEngine_Simulate_HooksObserveHalts(t *testing.T) {
	var halts []domain.HaltReason
	var outcome *domain.OutcomeEvent
	hooks := domain.LifecycleHooks{
		OnHalt: func(ctx context.Context, e *domain.HaltEvent) {
			halts = append(halts, e.Reason)
		},
		OnOutcome: func(ctx context.Context, e *domain.OutcomeEvent) {
			outcome = e
		},
	}

	result := simulate(t, aStar, "ab", 5, runtime.WithLifecycleHooks(hooks))

	assert.Equal(t, []domain.HaltReason{domain.HaltImplicit}, halts)
	require.NotNil(t, outcome)
	assert.Equal(t, result.Verdict, outcome.Verdict)
	assert.Equal(t, result.Depth, outcome.Depth)
}

func TestEngine_Simulate_CustomBlank(t *testing.T) {
	rules := []domain.Transition{
		rule("q0", "a", "q0", "a", domain.MoveRight),
		rule("q0", "#", accept, "#", domain.MoveStay),
	}

	result := simulate(t, rules, "a", 5, runtime.WithBlank("#"))

	assert.Equal(t, domain.VerdictAccepted, result.Verdict)
	assert.Equal(t, "#", result.Path[len(result.Path)-1].Right.String())
}

func TestEngine_Simulate_WideBranching(t *testing.T) {
	// Every step forks into two identical children, so level d holds 2^d
	// configurations that are all equal by value.
	rules := []domain.Transition{
		rule("q0", blank, "q0", blank, domain.MoveStay),
		rule("q0", blank, "q0", blank, domain.MoveStay),
	}

	var widths []int
	hooks := domain.LifecycleHooks{
		OnLevel: func(ctx context.Context, e *domain.LevelEvent) {
			widths = append(widths, e.Stats.Width)
		},
	}

	result := simulate(t, rules, "", 12, runtime.WithLifecycleHooks(hooks))

	assert.Equal(t, domain.VerdictUndecided, result.Verdict)
	assert.True(t, result.CapReached())
	require.Len(t, widths, 12)
	for d, w := range widths {
		assert.Equal(t, 1<<d, w, "level %d", d)
	}
	assert.Equal(t, 1<<12-1, result.Expanded)
}
