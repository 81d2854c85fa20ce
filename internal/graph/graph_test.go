package graph

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Miosp/Tessy/internal/task"
)

type fakeTask struct {
	id   string
	deps []string
}

func (f fakeTask) ID() string             { return f.id }
func (f fakeTask) Dependencies() []string { return f.deps }
func (f fakeTask) Inputs() []string       { return nil }
func (f fakeTask) Run() (string, error)   { return f.id, nil }

func catalogOf(tasks ...fakeTask) task.Catalog {
	m := make(map[string]task.Task, len(tasks))
	for _, t := range tasks {
		m[t.id] = t
	}
	return task.NewCatalog(m)
}

func TestBuildDiamondClosure(t *testing.T) {
	catalog := catalogOf(
		fakeTask{id: "a"},
		fakeTask{id: "b", deps: []string{"a"}},
		fakeTask{id: "c", deps: []string{"a"}},
		fakeTask{id: "d", deps: []string{"b", "c"}},
	)

	g, err := Build(catalog, "d", hclog.NewNullLogger())
	require.NoError(t, err)

	assert.Len(t, g.Closure, 4)
	assert.Contains(t, g.Parents["a"], "b")
	assert.Contains(t, g.Parents["a"], "c")
	assert.Contains(t, g.Parents["b"], "d")
	assert.Contains(t, g.Parents["c"], "d")
	assert.Empty(t, g.Parents["d"])
}

func TestBuildPrunesUnrelatedTasks(t *testing.T) {
	catalog := catalogOf(
		fakeTask{id: "a"},
		fakeTask{id: "b", deps: []string{"a"}},
		fakeTask{id: "z"},
	)

	g, err := Build(catalog, "b", hclog.NewNullLogger())
	require.NoError(t, err)

	assert.Len(t, g.Closure, 2)
	_, zInClosure := g.Closure["z"]
	assert.False(t, zInClosure)
}

func TestBuildDetectsCycle(t *testing.T) {
	catalog := catalogOf(
		fakeTask{id: "a", deps: []string{"b"}},
		fakeTask{id: "b", deps: []string{"a"}},
	)

	_, err := Build(catalog, "a", hclog.NewNullLogger())
	require.Error(t, err)

	var cycle *CycleDetected
	require.ErrorAs(t, err, &cycle)
}

func TestBuildIgnoresMissingDependency(t *testing.T) {
	catalog := catalogOf(
		fakeTask{id: "a", deps: []string{"ghost"}},
	)

	g, err := Build(catalog, "a", hclog.NewNullLogger())
	require.NoError(t, err)
	assert.Len(t, g.Closure, 1)
}

func TestLeaves(t *testing.T) {
	catalog := catalogOf(
		fakeTask{id: "a"},
		fakeTask{id: "b", deps: []string{"a"}},
	)

	g, err := Build(catalog, "b", hclog.NewNullLogger())
	require.NoError(t, err)

	leaves := g.Leaves(catalog)
	assert.Equal(t, []string{"a"}, leaves)
}
