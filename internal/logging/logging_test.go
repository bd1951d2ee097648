package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var started = time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

func TestFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("ballsymlogs", "ballsym.20260212_213836.log"),
		FilePath("ballsymlogs", "ballsym", started))
	assert.Equal(t,
		filepath.Join("/var", "log", "bench.20260212_213836.log"),
		FilePath(filepath.Join("/var", "log"), "bench", started))
}

func TestOpenFile_CreatesDirAndAppends(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	f, path, err := OpenFile(dir, "ballsym", started)
	require.NoError(t, err)
	_, err = f.WriteString("first\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, again, err := OpenFile(dir, "ballsym", started)
	require.NoError(t, err)
	assert.Equal(t, path, again)
	_, err = f.WriteString("second\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}

func TestOpenFile_DirIsAFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	f, path, err := OpenFile(blocker, "ballsym", started)
	assert.Error(t, err)
	assert.Nil(t, f)
	assert.Equal(t, FilePath(blocker, "ballsym", started), path)
}
