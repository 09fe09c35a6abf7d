// Package checkpoint persists training state to a run directory as
// checkpoint.pt, optionally duplicated as best.pt.
//
// The state is encoded in memory before checkpoint.pt is opened, so an
// encoding failure leaves the previous file untouched. The write itself
// is not atomic: a crash mid-write can leave a truncated checkpoint.pt.
package checkpoint

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File names inside a run directory.
const (
	LatestFile = "checkpoint.pt"
	BestFile   = "best.pt"
)

// Snapshot is an opaque, serializable training state.
type Snapshot interface {
	WriteTo(w io.Writer) (int64, error)
}

// Save writes state to dir/checkpoint.pt, replacing any previous file.
// If isBest is set, the written file is then copied to dir/best.pt.
//
// dir must exist. Errors are returned as-is to the caller; a failed write
// may leave a partial checkpoint.pt behind.
func Save(state Snapshot, isBest bool, dir string) error {
	filename := filepath.Join(dir, LatestFile)
	if err := writeFile(filename, state); err != nil {
		return err
	}
	if isBest {
		if err := copyFile(filename, filepath.Join(dir, BestFile)); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, state Snapshot) (err error) {
	var buf bytes.Buffer
	if _, err := state.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to encode checkpoint %s: %w", path, err)
	}

	//nolint:gosec // G304: path is the caller's run directory
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close checkpoint: %w", closeErr)
		}
	}()

	if _, err := buf.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write checkpoint %s: %w", path, err)
	}
	return nil
}

func copyFile(src, dst string) (err error) {
	//nolint:gosec // G304: paths are inside the caller's run directory
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	//nolint:gosec // G304: paths are inside the caller's run directory
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", dst, closeErr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return nil
}

// Store saves snapshots into a fixed run directory.
type Store struct {
	Dir string
}

// NewStore returns a Store for dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Save is Save(state, isBest, s.Dir).
func (s *Store) Save(state Snapshot, isBest bool) error {
	return Save(state, isBest, s.Dir)
}

// LatestPath returns the path of checkpoint.pt.
func (s *Store) LatestPath() string {
	return filepath.Join(s.Dir, LatestFile)
}

// BestPath returns the path of best.pt.
func (s *Store) BestPath() string {
	return filepath.Join(s.Dir, BestFile)
}

// LoadLatest reads checkpoint.pt.
func (s *Store) LoadLatest() (*TrainingState, error) {
	return Load(s.LatestPath())
}

// LoadBest reads best.pt.
func (s *Store) LoadBest() (*TrainingState, error) {
	return Load(s.BestPath())
}
