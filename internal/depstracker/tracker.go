// Package depstracker is the Dependency Tracker: it persists, per task, the
// fingerprint of every file that task's inputs expanded to, and decides
// whether a task's current inputs still match the fingerprints recorded the
// last time it ran.
package depstracker

import (
	"os"
	"path/filepath"

	"github.com/DataDog/zstd"
	"github.com/fxamacker/cbor/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	"github.com/Miosp/Tessy/internal/fingerprint"
	"github.com/Miosp/Tessy/internal/task"
)

// relativeDir is joined onto the project root to locate the persisted state.
const relativeDir = ".tessy"

// fileName is the name of the persisted tracker file within relativeDir.
const fileName = "dependencies.bincode.zstd"

// zstdLevel is the compression level used for the persisted tracker.
const zstdLevel = 3

// record is one task's {path -> fingerprint} dependency record. Equality is
// the standard set-equality of maps: same key set, equal fingerprints for
// every key.
type record map[string]fingerprint.Fingerprint

// wireFingerprint is the CBOR-serializable shape of a fingerprint.Fingerprint;
// fingerprint.Fingerprint itself isn't (de)serialized directly so the wire
// format doesn't have to track time.Time's internal representation.
type wireFingerprint struct {
	Kind    int    `cbor:"kind"`
	ModTime int64  `cbor:"mod_time,omitempty"` // UnixNano
	Hash    uint64 `cbor:"hash,omitempty"`
}

// Tracker is a mapping from task id to that task's dependency record. Build
// one with New or Load; the zero value has no logger and no map and is not
// ready for use.
type Tracker struct {
	logger hclog.Logger
	deps   map[task.ID]record
}

// New returns an empty Tracker.
func New(logger hclog.Logger) *Tracker {
	return &Tracker{logger: logger.Named("tracker"), deps: make(map[task.ID]record)}
}

// Load reads the Tracker from <root>/.tessy/dependencies.bincode.zstd. Any
// failure (missing file, decompression failure, decode failure) degrades to
// an empty Tracker; it is logged at debug but never returned as an error,
// since the next run simply rebuilds more.
func Load(root string, logger hclog.Logger) *Tracker {
	logger = logger.Named("tracker")
	path := filepath.Join(root, relativeDir, fileName)

	compressed, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("no existing dependency tracker, starting fresh", "path", path, "error", err)
		return &Tracker{logger: logger, deps: make(map[task.ID]record)}
	}

	raw, err := zstd.Decompress(nil, compressed)
	if err != nil {
		logger.Debug("failed to decompress dependency tracker, starting fresh", "path", path, "error", err)
		return &Tracker{logger: logger, deps: make(map[task.ID]record)}
	}

	var wire map[task.ID]map[string]wireFingerprint
	if err := cbor.Unmarshal(raw, &wire); err != nil {
		logger.Debug("failed to decode dependency tracker, starting fresh", "path", path, "error", err)
		return &Tracker{logger: logger, deps: make(map[task.ID]record)}
	}

	return &Tracker{logger: logger, deps: fromWire(wire)}
}

// IsUpToDate implements the up-to-date decision rule: a task with no saved
// record is never up to date; otherwise the saved record must equal the
// task's current expanded inputs exactly.
func (t *Tracker) IsUpToDate(tk task.Task, root string) bool {
	saved, ok := t.deps[tk.ID()]
	if !ok {
		return false
	}

	current, err := Expand(tk.Inputs(), root, t.logger)
	if err != nil {
		t.logger.Warn("failed to expand inputs, treating as not up to date", "task", tk.ID(), "error", err)
		return false
	}

	return recordsEqual(saved, current)
}

func recordsEqual(a, b record) bool {
	if len(a) != len(b) {
		return false
	}
	for path, fp := range a {
		other, ok := b[path]
		if !ok || !fp.Equal(other) {
			return false
		}
	}
	return true
}

// Update replaces the saved record for each completed task id with the
// freshly expanded fingerprint map for its current inputs. Records for task
// ids not in completed are preserved unchanged.
func (t *Tracker) Update(catalog task.Catalog, root string, completed []task.ID) {
	for _, id := range completed {
		tk, ok := catalog.Get(id)
		if !ok {
			continue
		}
		current, err := Expand(tk.Inputs(), root, t.logger)
		if err != nil {
			t.logger.Warn("failed to expand inputs during update, keeping stale record", "task", id, "error", err)
			continue
		}
		t.deps[id] = current
	}
}

// Write flushes the Tracker to <root>/.tessy/dependencies.bincode.zstd. The
// parent directory is created if absent. Write is best-effort: any failure
// is logged and swallowed.
func (t *Tracker) Write(root string) {
	dir := filepath.Join(root, relativeDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.logger.Warn("failed to create dependency tracker directory", "dir", dir, "error", err)
		return
	}

	raw, err := cbor.Marshal(toWire(t.deps))
	if err != nil {
		t.logger.Warn("failed to encode dependency tracker", "error", err)
		return
	}

	compressed, err := zstd.CompressLevel(nil, raw, zstdLevel)
	if err != nil {
		t.logger.Warn("failed to compress dependency tracker", "error", err)
		return
	}

	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, compressed, 0o644); err != nil {
		t.logger.Warn("failed to write dependency tracker", "path", path, "error", errors.Cause(err))
	}
}

func toWire(deps map[task.ID]record) map[task.ID]map[string]wireFingerprint {
	wire := make(map[task.ID]map[string]wireFingerprint, len(deps))
	for id, rec := range deps {
		wireRec := make(map[string]wireFingerprint, len(rec))
		for path, fp := range rec {
			w := wireFingerprint{Kind: int(fp.Kind), Hash: fp.Hash}
			if fp.Kind == fingerprint.ModifiedTimeKind {
				w.ModTime = fp.ModTime.UnixNano()
			}
			wireRec[path] = w
		}
		wire[id] = wireRec
	}
	return wire
}

func fromWire(wire map[task.ID]map[string]wireFingerprint) map[task.ID]record {
	deps := make(map[task.ID]record, len(wire))
	for id, wireRec := range wire {
		rec := make(record, len(wireRec))
		for path, w := range wireRec {
			fp := fingerprint.Fingerprint{Kind: fingerprint.Kind(w.Kind), Hash: w.Hash}
			if fp.Kind == fingerprint.ModifiedTimeKind {
				fp.ModTime = unixNanoToTime(w.ModTime)
			}
			rec[path] = fp
		}
		deps[id] = rec
	}
	return deps
}
