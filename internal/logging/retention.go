package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// sweepExpired removes daily log files, and their rotated backups, last
// modified before now-retention. lumberjack only ages backups of the file it
// currently owns; earlier days' files are cleaned up here. The active file
// and errors.log never match.
func sweepExpired(dir, active string, retention time.Duration, now time.Time) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, filePrefix+"*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list log files: %w", err)
	}

	cutoff := now.Add(-retention)
	var removed []string
	for _, path := range matches {
		if path == active {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("failed to remove expired log %s: %w", path, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}
