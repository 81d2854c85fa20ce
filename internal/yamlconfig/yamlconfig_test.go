package yamlconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Miosp/Tessy/internal/task"
)

type stubRunner struct{}

func (stubRunner) Run(id task.ID, command string) error { return nil }

func writeCatalog(t *testing.T, contents string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(contents), 0o644))
	return root
}

func TestLoadParsesExecuteTasks(t *testing.T) {
	root := writeCatalog(t, `
tasks:
  build:
    command: "make build"
    dependsOn: [fetch]
    inputs: [src]
  fetch:
    command: "make fetch"
`)

	catalog, err := Load(root, stubRunner{}, hclog.NewNullLogger())
	require.NoError(t, err)

	build, ok := catalog.Get("build")
	require.True(t, ok)
	assert.Equal(t, []string{"fetch"}, build.Dependencies())
	assert.Equal(t, []string{"src"}, build.Inputs())

	_, ok = catalog.Get("fetch")
	assert.True(t, ok)
}

func TestLoadSkipsUnrecognizedType(t *testing.T) {
	root := writeCatalog(t, `
tasks:
  mystery:
    type: wizardry
    command: "echo hi"
`)

	catalog, err := Load(root, stubRunner{}, hclog.NewNullLogger())
	require.NoError(t, err)
	_, ok := catalog.Get("mystery")
	assert.False(t, ok)
}

func TestLoadSkipsMissingCommand(t *testing.T) {
	root := writeCatalog(t, `
tasks:
  incomplete:
    dependsOn: [other]
`)

	catalog, err := Load(root, stubRunner{}, hclog.NewNullLogger())
	require.NoError(t, err)
	_, ok := catalog.Get("incomplete")
	assert.False(t, ok)
}

func TestLoadFiltersNonStringDependsOnAndInputs(t *testing.T) {
	root := writeCatalog(t, `
tasks:
  t:
    command: "echo hi"
    dependsOn: [a, 5, b]
    inputs: [x.txt, true, y.txt]
`)

	catalog, err := Load(root, stubRunner{}, hclog.NewNullLogger())
	require.NoError(t, err)
	tk, ok := catalog.Get("t")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, tk.Dependencies())
	assert.Equal(t, []string{"x.txt", "y.txt"}, tk.Inputs())
}

func TestLoadRejectsNonMapTasksValue(t *testing.T) {
	root := writeCatalog(t, `
tasks: "not a map"
`)

	_, err := Load(root, stubRunner{}, hclog.NewNullLogger())
	require.Error(t, err)
	var catalogErr *CatalogError
	require.ErrorAs(t, err, &catalogErr)
}

func TestLoadRejectsDuplicateTaskIDs(t *testing.T) {
	// A literal duplicate mapping key survives decoding into a yaml.Node
	// tree (unlike decoding straight into a Go map, which yaml.v3 would
	// reject for the whole document), so this reaches the catalog's own
	// duplicate-id check rather than failing earlier for an unrelated
	// reason.
	root := writeCatalog(t, `
tasks:
  t:
    command: "echo first"
  t:
    command: "echo second"
`)

	_, err := Load(root, stubRunner{}, hclog.NewNullLogger())
	require.Error(t, err)

	var catalogErr *CatalogError
	require.ErrorAs(t, err, &catalogErr)
	var dupErr *task.ErrDuplicateTaskID
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "t", dupErr.ID)
}

func TestLoadMissingFileIsCatalogError(t *testing.T) {
	root := t.TempDir()
	_, err := Load(root, stubRunner{}, hclog.NewNullLogger())
	require.Error(t, err)
	var catalogErr *CatalogError
	require.ErrorAs(t, err, &catalogErr)
}

func TestLoadAbsentTasksKeyYieldsEmptyCatalog(t *testing.T) {
	root := writeCatalog(t, `
unrelated: true
`)
	catalog, err := Load(root, stubRunner{}, hclog.NewNullLogger())
	require.NoError(t, err)
	assert.Equal(t, 0, catalog.Len())
}
