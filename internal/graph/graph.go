// Package graph builds the Dependency Graph: the transitive closure of a
// target task over outgoing dependency edges, plus the reverse-adjacency
// (parent) lists and the topological walk the scheduler drives as tasks
// complete. The closure and its ordering are computed on
// github.com/pyr-sh/dag's acyclic graph rather than by hand.
package graph

import (
	"github.com/hashicorp/go-hclog"
	"github.com/pyr-sh/dag"

	"github.com/Miosp/Tessy/internal/task"
)

// Graph is the Dependency Graph: dag holds every task id in the target's
// transitive closure N as a vertex, with an edge from a task to each of its
// declared dependencies. Parents and Closure are derived views over dag kept
// for callers that want plain maps rather than dag's own accessors.
type Graph struct {
	dag dag.AcyclicGraph

	// Parents maps a task id to the ids of tasks that list it as a
	// dependency, restricted to the closure of the target.
	Parents map[task.ID][]task.ID
	// Closure is every task id reachable from the target via outgoing
	// dependency edges, including the target itself.
	Closure map[task.ID]struct{}
}

// CycleDetected is returned by Build when a task's dependencies form a
// cycle reachable from the target. Cycles are rejected explicitly, via
// dag.AcyclicGraph.Validate, rather than silently truncated at a visited
// check.
type CycleDetected struct {
	Cause error
}

func (e *CycleDetected) Error() string {
	return "dependency cycle detected: " + e.Cause.Error()
}

func (e *CycleDetected) Unwrap() error { return e.Cause }

// Build computes the Dependency Graph for target over catalog. Task ids
// referenced as dependencies but missing from catalog are logged and
// otherwise ignored. The catalog is walked by hand to discover which
// vertices and edges belong to the target's closure; dag.AcyclicGraph then
// owns cycle validation, transitive closure, and reverse adjacency over
// that graph, the same division of labor the graph's own teacher uses
// between its pipeline loaders and dag.
func Build(catalog task.Catalog, target task.ID, logger hclog.Logger) (*Graph, error) {
	logger = logger.Named("graph")

	var g dag.AcyclicGraph
	g.Add(target)

	visited := map[task.ID]bool{target: true}
	queue := []task.ID{target}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		t, ok := catalog.Get(id)
		if !ok {
			logger.Debug("dependency references unknown task id", "id", id)
			continue
		}

		for _, dep := range t.Dependencies() {
			if _, ok := catalog.Get(dep); !ok {
				logger.Debug("dependency references unknown task id", "id", id, "dependency", dep)
				continue
			}

			g.Add(dep)
			g.Connect(dag.BasicEdge(id, dep))

			if !visited[dep] {
				visited[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	if err := g.Validate(); err != nil {
		return nil, &CycleDetected{Cause: err}
	}

	descendants, err := g.Descendents(target)
	if err != nil {
		return nil, &CycleDetected{Cause: err}
	}

	closure := make(map[task.ID]struct{}, len(descendants)+1)
	closure[target] = struct{}{}
	for v := range descendants {
		closure[v.(task.ID)] = struct{}{}
	}

	parents := make(map[task.ID][]task.ID, len(closure))
	for id := range closure {
		parents[id] = nil
		for v := range g.UpEdges(id) {
			parentID := v.(task.ID)
			if _, inClosure := closure[parentID]; inClosure {
				parents[id] = append(parents[id], parentID)
			}
		}
	}

	return &Graph{dag: g, Parents: parents, Closure: closure}, nil
}

// Leaves returns every task id in the graph's closure whose catalog entry
// has no declared dependencies — the scheduler's seed set.
func (g *Graph) Leaves(catalog task.Catalog) []task.ID {
	var leaves []task.ID
	for id := range g.Closure {
		if catalog.IsLeaf(id) {
			leaves = append(leaves, id)
		}
	}
	return leaves
}

// Walk drives visit over every task id in the closure, respecting
// dependency order: visit(id) is never called until every id's
// dependencies have returned from their own visit call. Concurrency across
// independent branches is dag's own; callers bound it with their own
// semaphore inside visit.
func (g *Graph) Walk(visit func(id task.ID) error) []error {
	return g.dag.Walk(func(v dag.Vertex) error {
		return visit(v.(task.ID))
	})
}
