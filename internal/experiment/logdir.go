package experiment

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ExpIDFormat is the layout of generated run ids (second resolution).
const ExpIDFormat = "20060102150405"

// DirPerm is applied to every run directory, regardless of umask, so any
// user on the host can read and write run output.
const DirPerm os.FileMode = 0o777

// LogDir resolves and creates the run directory cfg.LogDir/cfg.ExpID.
//
// An empty ExpID is replaced with the current local time in ExpIDFormat
// and written back to cfg. Creating an existing directory is a no-op.
func LogDir(cfg *Config) (string, error) {
	return logDirAt(cfg, time.Now())
}

func logDirAt(cfg *Config, now time.Time) (string, error) {
	if cfg.ExpID == "" {
		cfg.ExpID = now.Format(ExpIDFormat)
	}
	dir := filepath.Join(cfg.LogDir, cfg.ExpID)

	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return "", fmt.Errorf("failed to create log dir: %w", err)
	}
	//nolint:gosec // G302: run directories are shared on purpose
	if err := os.Chmod(dir, DirPerm); err != nil {
		return "", fmt.Errorf("failed to chmod log dir: %w", err)
	}
	return dir, nil
}
