// Package task holds the task catalog data model: the BaseTask fields shared
// by every variant, the Execute variant, and the read-only Catalog tasks are
// looked up from during a run.
package task

import "fmt"

// ID identifies a task uniquely within a Catalog.
type ID = string

// Task is the polymorphic interface every task variant implements. Execute is
// the only variant in scope today; the interface leaves room for future
// variants without the executor or graph builder needing to know about them.
type Task interface {
	ID() ID
	Dependencies() []ID
	Inputs() []string
	// Run executes the task's work and returns its own id on success, so
	// callers can forward the result on a completion channel without
	// closing over the task.
	Run() (ID, error)
}

// Base carries the scalar fields shared by every task variant: its id,
// declared dependencies, and declared inputs. Variants embed Base and add
// their own payload (Execute adds Command).
type Base struct {
	id           ID
	dependencies []ID
	inputs       []string
}

// NewBase constructs a Base task. Tasks are immutable once constructed.
func NewBase(id ID, dependencies []ID, inputs []string) Base {
	return Base{id: id, dependencies: dependencies, inputs: inputs}
}

// ID returns the task's id.
func (b Base) ID() ID { return b.id }

// Dependencies returns the task's declared dependency ids, in declaration order.
func (b Base) Dependencies() []ID { return b.dependencies }

// Inputs returns the task's declared input path strings, in declaration order.
func (b Base) Inputs() []string { return b.inputs }

// Catalog is a read-only mapping from task id to Task, built once at startup
// and shared by reference for the lifetime of a run.
type Catalog struct {
	tasks map[ID]Task
}

// NewCatalog builds a Catalog from an id -> Task mapping. The caller must not
// mutate tasks after constructing the Catalog.
func NewCatalog(tasks map[ID]Task) Catalog {
	return Catalog{tasks: tasks}
}

// Get looks up a task by id.
func (c Catalog) Get(id ID) (Task, bool) {
	t, ok := c.tasks[id]
	return t, ok
}

// IDs returns every task id in the catalog, in no particular order.
func (c Catalog) IDs() []ID {
	ids := make([]ID, 0, len(c.tasks))
	for id := range c.tasks {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of tasks in the catalog.
func (c Catalog) Len() int { return len(c.tasks) }

// IsLeaf reports whether the task with the given id has no declared
// dependencies. Tasks missing from the catalog are not leaves.
func (c Catalog) IsLeaf(id ID) bool {
	t, ok := c.tasks[id]
	return ok && len(t.Dependencies()) == 0
}

// ErrDuplicateTaskID is returned by catalog builders when two entries claim
// the same task id.
type ErrDuplicateTaskID struct {
	ID ID
}

func (e *ErrDuplicateTaskID) Error() string {
	return fmt.Sprintf("duplicate task id %q", e.ID)
}
