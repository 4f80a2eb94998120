package loam

import (
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/ntmtrace/internal/compiler"
	"github.com/aretw0/ntmtrace/internal/testutils"
	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/aretw0/ntmtrace/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const aStarDoc = `---
name: a_star
states: [q0, qAccept, qReject]
input_alphabet: [a]
tape_alphabet: [a, _]
start: q0
accept: qAccept
reject: qReject
transitions:
  - {from: q0, read: a, to: q0, write: a, move: R}
  - q0,_,qAccept,_,S
---
Accepts any run of a.`

const binaryDoc = `---
name: binary
states: [q0, acc, rej]
input_alphabet: [0, 1]
tape_alphabet: [0, 1, "#"]
blank: "#"
start: q0
accept: acc
reject: rej
rules:
  - q0,0,q0,0,R
  - q0,#,acc,#,S
---`

func seed(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	_, repo := testutils.SetupTestRepo(t, files)
	return New(loam.NewTypedRepository[MachineMetadata](repo))
}

func TestLoader_Contract(t *testing.T) {
	loader := seed(t, map[string]string{
		"a_star.md": aStarDoc,
		"binary.md": binaryDoc,
	})

	// Loam re-encodes documents, so only names and lookups are compared.
	tests.MachineLoaderContractTest(t, loader, map[string][]byte{
		"a_star": nil,
		"binary": nil,
	})
}

func TestLoader_GetMachine_Compiles(t *testing.T) {
	loader := seed(t, map[string]string{"a_star.md": aStarDoc, "binary.md": binaryDoc})

	raw, err := loader.GetMachine("a_star")
	require.NoError(t, err)

	m, err := compiler.NewParser().Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "a_star", m.Name)
	assert.Equal(t, "Accepts any run of a.", m.Description)
	require.Len(t, m.Transitions, 2)
	assert.Equal(t, domain.MoveStay, m.Transitions[1].Move)

	raw, err = loader.GetMachine("binary")
	require.NoError(t, err)
	m, err = compiler.NewParser().Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, domain.Symbol("#"), m.Blank)
	assert.Equal(t, []domain.Symbol{"0", "1"}, m.InputAlphabet)
	assert.Len(t, m.Transitions, 2)
}

func TestLoader_ListMachines_NormalizesNames(t *testing.T) {
	loader := seed(t, map[string]string{
		"implicit.md": "---\nstart: q0\n---\n",
		"named.md":    "---\nname: explicit.md\nstart: q0\n---\n",
	})

	names, err := loader.ListMachines()
	require.NoError(t, err)
	assert.Equal(t, []string{"explicit", "implicit"}, names)
}

func TestLoader_ListMachines_DetectsCollisions(t *testing.T) {
	loader := seed(t, map[string]string{
		"foo.md": "---\nname: foo\n---\n",
		"bar.md": "---\nname: foo\n---\n",
	})

	_, err := loader.ListMachines()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
}
