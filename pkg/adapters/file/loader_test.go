package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/ntmtrace/pkg/adapters/file"
	contract "github.com/aretw0/ntmtrace/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestFileLoader_Contract(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a_star.yaml":   "name: a_star\n",
		"binary.json":   `{"name": "binary"}`,
		"classic.tm":    "classic\n",
		"ntmtrace.yaml": "max_depth: 10\n",
		"notes.md":      "not a machine",
		".hidden.yaml":  "name: hidden\n",
	})

	loader := file.NewLoader(dir, "ntmtrace.yaml")
	contract.MachineLoaderContractTest(t, loader, map[string][]byte{
		"a_star":  []byte("name: a_star\n"),
		"binary":  []byte(`{"name": "binary"}`),
		"classic": []byte("classic\n"),
	})
}

func TestFileLoader_Collision(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"m.yaml": "name: m\n",
		"m.json": `{"name": "m"}`,
	})

	_, err := file.NewLoader(dir).ListMachines()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
}

func TestFileLoader_RejectsPaths(t *testing.T) {
	_, err := file.NewLoader(t.TempDir()).GetMachine("../etc/passwd")
	assert.Error(t, err)
}
