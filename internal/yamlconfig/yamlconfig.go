// Package yamlconfig loads a task catalog from <root>/tasks.yaml, producing
// a task.Catalog and otherwise staying out of the core's concerns. The
// document is decoded into a yaml.Node tree rather than straight into a Go
// map, so a literal duplicate task id can be caught and reported as a
// CatalogError of its own rather than failing the whole parse the moment
// yaml.v3 notices any duplicate key anywhere in the document.
package yamlconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"

	"github.com/Miosp/Tessy/internal/task"
)

// FileName is the catalog file's fixed name, resolved relative to the
// project root.
const FileName = "tasks.yaml"

// CatalogError reports a hard failure loading the catalog: malformed YAML,
// a top-level document that isn't a map, a tasks key that isn't a map, or a
// duplicate task id.
type CatalogError struct {
	Path  string
	Cause error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("failed to load task catalog from %q: %v", e.Path, e.Cause)
}

func (e *CatalogError) Unwrap() error { return e.Cause }

// Load reads and parses root/tasks.yaml into a task.Catalog. runner is
// injected into every Execute task it constructs.
func Load(root string, runner task.Runner, logger hclog.Logger) (task.Catalog, error) {
	logger = logger.Named("yamlconfig")
	path := filepath.Join(root, FileName)

	raw, err := os.ReadFile(path)
	if err != nil {
		return task.Catalog{}, &CatalogError{Path: path, Cause: err}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return task.Catalog{}, &CatalogError{Path: path, Cause: err}
	}
	if len(doc.Content) == 0 {
		return task.NewCatalog(map[string]task.Task{}), nil
	}

	root, ok := mappingRoot(&doc)
	if !ok {
		return task.Catalog{}, &CatalogError{Path: path, Cause: fmt.Errorf("top-level document is not a mapping")}
	}

	tasksNode := mappingValue(root, "tasks")
	if tasksNode == nil {
		return task.NewCatalog(map[string]task.Task{}), nil
	}
	if tasksNode.Kind != yaml.MappingNode {
		return task.Catalog{}, &CatalogError{Path: path, Cause: fmt.Errorf("`tasks` key is not a mapping")}
	}

	tasks := make(map[string]task.Task, len(tasksNode.Content)/2)
	for i := 0; i+1 < len(tasksNode.Content); i += 2 {
		keyNode, valueNode := tasksNode.Content[i], tasksNode.Content[i+1]

		var id string
		if err := keyNode.Decode(&id); err != nil {
			logger.Debug("skipping task with non-string key", "error", err)
			continue
		}

		var body interface{}
		if err := valueNode.Decode(&body); err != nil {
			logger.Debug("skipping task with undecodable body", "id", id, "error", err)
			continue
		}

		t, skip := parseTaskBody(id, body, runner, logger)
		if skip {
			continue
		}

		if _, dup := tasks[id]; dup {
			return task.Catalog{}, &CatalogError{Path: path, Cause: &task.ErrDuplicateTaskID{ID: id}}
		}
		tasks[id] = t
	}

	return task.NewCatalog(tasks), nil
}

// mappingRoot unwraps a decoded document's DocumentNode down to its single
// top-level mapping, if that's what it is.
func mappingRoot(doc *yaml.Node) (*yaml.Node, bool) {
	node := doc.Content[0]
	if node.Kind != yaml.MappingNode {
		return nil, false
	}
	return node, true
}

// mappingValue looks up key's value among a mapping node's Content pairs.
// Returns nil if key isn't present.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// parseTaskBody parses a single tasks.<id> entry. The bool return is true
// when the entry should be silently skipped rather than added to the
// catalog.
func parseTaskBody(id string, body interface{}, runner task.Runner, logger hclog.Logger) (task.Task, bool) {
	fields, ok := body.(map[string]interface{})
	if !ok {
		logger.Debug("skipping task with non-map body", "id", id)
		return nil, true
	}

	if kind, present := fields["type"]; present {
		kindStr, ok := kind.(string)
		if !ok || kindStr != "execute" {
			logger.Warn("skipping task with unrecognized type", "id", id, "type", kind)
			return nil, true
		}
	}

	command, ok := fields["command"].(string)
	if !ok {
		logger.Warn("skipping execute task with missing or non-string command", "id", id)
		return nil, true
	}

	dependsOn := stringSlice(fields["dependsOn"])
	inputs := stringSlice(fields["inputs"])

	return task.NewExecute(id, dependsOn, inputs, command, runner), false
}

// stringSlice coerces a YAML sequence value into a []string, silently
// dropping any non-string items. A missing or non-sequence value yields
// nil.
func stringSlice(v interface{}) []string {
	seq, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(seq))
	for _, item := range seq {
		s, ok := item.(string)
		if !ok {
			continue
		}
		out = append(out, s)
	}
	return out
}
