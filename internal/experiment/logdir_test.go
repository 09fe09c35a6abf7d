package experiment

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogDir_GeneratesTimestampID(t *testing.T) {
	base := t.TempDir()
	now := time.Date(2026, 10, 18, 9, 5, 7, 0, time.Local)

	cfg := &Config{LogDir: base}
	dir, err := logDirAt(cfg, now)
	require.NoError(t, err)

	assert.Equal(t, "20261018090507", cfg.ExpID)
	assert.Equal(t, filepath.Join(base, "20261018090507"), dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, DirPerm, info.Mode().Perm())
}

func TestLogDir_DifferentTimesDifferentDirs(t *testing.T) {
	base := t.TempDir()
	now := time.Date(2026, 10, 18, 9, 5, 7, 0, time.Local)

	first, err := logDirAt(&Config{LogDir: base}, now)
	require.NoError(t, err)
	second, err := logDirAt(&Config{LogDir: base}, now.Add(time.Second))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestLogDir_FixedIDIsIdempotent(t *testing.T) {
	base := t.TempDir()
	cfg := &Config{LogDir: filepath.Join(base, "nested", "runs"), ExpID: "baseline"}

	first, err := LogDir(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(first, "keep.txt"), []byte("x"), 0o600))

	second, err := LogDir(cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "baseline", cfg.ExpID)
	assert.FileExists(t, filepath.Join(second, "keep.txt"))
}

func TestLogDir_ChmodsExistingDir(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "run")
	require.NoError(t, os.Mkdir(dir, 0o700))

	_, err := LogDir(&Config{LogDir: base, ExpID: "run"})
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, DirPerm, info.Mode().Perm())
}

func TestLogDir_BaseIsAFile(t *testing.T) {
	base := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(base, nil, 0o600))

	_, err := LogDir(&Config{LogDir: base, ExpID: "x"})
	require.Error(t, err)
}
