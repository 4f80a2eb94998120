package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// AStarYAML describes a machine accepting any run of 'a'.
const AStarYAML = `name: a_star
states: [q0, qAccept, qReject]
input_alphabet: [a]
tape_alphabet: [a, _]
start: q0
accept: qAccept
reject: qReject
transitions:
  - q0,a,q0,a,R
  - q0,_,qAccept,_,S
`

// BrokenYAML parses but fails validation: its accept state is undeclared.
const BrokenYAML = "name: broken\nstates: [q0]\nstart: q0\naccept: q9\n"

// WriteFiles writes each filename/content pair into dir.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644), "write %s", name)
	}
}

// MachineDir returns a fresh temp dir holding the given machine files.
func MachineDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	WriteFiles(t, dir, files)
	return dir
}

// SetupTestRepo initializes a Loam repository in a temp dir and seeds it
// with files. It returns the absolute path and the repository.
func SetupTestRepo(t *testing.T, files map[string]string, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	repo, err := loam.Init(absPath, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	WriteFiles(t, absPath, files)
	return absPath, repo
}
