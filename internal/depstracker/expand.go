package depstracker

import (
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/Miosp/Tessy/internal/fingerprint"
)

// Expand resolves each input string against root and returns the current
// fingerprint map for them: a regular file contributes one entry; a
// directory contributes one entry per regular file recursively beneath it;
// a path that doesn't exist is skipped and logged. Duplicate resolved paths
// across inputs collapse to one entry.
func Expand(inputs []string, root string, logger hclog.Logger) (record, error) {
	result := make(record)

	for _, input := range inputs {
		resolved := filepath.Join(root, input)

		info, err := os.Stat(resolved)
		if err != nil {
			logger.Debug("input does not exist, skipping", "input", input, "resolved", resolved)
			continue
		}

		if info.IsDir() {
			if err := expandDir(resolved, result, logger); err != nil {
				return nil, err
			}
			continue
		}

		fp, err := fingerprint.Of(resolved)
		if err != nil {
			return nil, err
		}
		result[resolved] = fp
	}

	return result, nil
}

func expandDir(dir string, into record, logger hclog.Logger) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			logger.Debug("failed to walk directory input", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		fp, fpErr := fingerprint.Of(path)
		if fpErr != nil {
			return fpErr
		}
		into[path] = fp
		return nil
	})
}

func unixNanoToTime(nanos int64) time.Time {
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos).UTC()
}
