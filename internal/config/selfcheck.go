package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/platformbuilds/acdice-core/pkg/logger"
)

// Validate runs the startup self-checks against s. It is best-effort: every
// failure is logged at error level and reported as false, never returned or
// panicked. Calling it again with the same Settings gives the same answer;
// s itself is never modified.
func Validate(s Settings, log logger.Logger) (ok bool) {
	if log == nil {
		log = logger.NewNop()
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("Configuration validation failed", "error", fmt.Errorf("panic: %v", r))
			ok = false
		}
		RecordValidation(ok)
	}()

	if _, found := CredentialsLocation(); found {
		log.Info("Firebase credentials found, will validate on initialization", "env", CredentialsEnvVar)
	}

	if err := ensureParentDir(s.ModelPath, log); err != nil {
		log.Error("Configuration validation failed", "setting", KeyModelPath, "error", err)
		return false
	}

	log.Info("Configuration validation passed")
	return true
}

// ensureParentDir makes sure the directory holding path exists.
func ensureParentDir(path string, log logger.Logger) error {
	dir := filepath.Dir(path)

	info, err := os.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Errorf("%s exists but is not a directory", dir)
		}
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to stat %s: %w", dir, err)
	}

	log.Warn("Directory does not exist, creating it", "path", dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return nil
}
