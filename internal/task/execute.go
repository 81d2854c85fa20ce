package task

// Runner is the subprocess facility the Execute variant delegates to. It is
// implemented by internal/runner.Runner; keeping the interface here (rather
// than importing that package) lets task stay a pure data model with no
// dependency on process spawning, logging, or color.
type Runner interface {
	// Run spawns the platform shell with command, streams its stdout/stderr
	// line by line under the given task id, and blocks until it exits.
	Run(id ID, command string) error
}

// Execute is the only task variant in scope: it runs a shell command. Tasks
// are immutable once constructed, so Execute carries its Runner by value at
// construction time rather than having it threaded through Run's arguments.
type Execute struct {
	Base
	Command string
	runner  Runner
}

// NewExecute constructs an Execute task.
func NewExecute(id ID, dependencies []ID, inputs []string, command string, runner Runner) *Execute {
	return &Execute{
		Base:    NewBase(id, dependencies, inputs),
		Command: command,
		runner:  runner,
	}
}

// Run spawns the task's command via the injected Runner and returns the
// task's own id on success, per the Task interface contract.
func (e *Execute) Run() (ID, error) {
	if err := e.runner.Run(e.ID(), e.Command); err != nil {
		return "", err
	}
	return e.ID(), nil
}

var _ Task = (*Execute)(nil)
