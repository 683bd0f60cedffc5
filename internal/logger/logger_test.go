package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 这些测试修改全局 log 输出，不并行执行

func TestInitAt_WritesToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, InitAt(dir))
	t.Cleanup(Close)

	assert.Equal(t, filepath.Join(dir, logName), GetLogPath())

	LogError("move rejected: %s", "occupied")
	LogPanic("boom")

	data, err := os.ReadFile(GetLogPath())
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "[INFO] Logger initialized")
	assert.Contains(t, content, "[ERROR] move rejected: occupied")
	assert.Contains(t, content, "[PANIC] boom")
}

func TestInitAt_RotatesLargeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, logName)
	require.NoError(t, os.WriteFile(path, make([]byte, maxLogSize+1), 0o644))

	require.NoError(t, InitAt(dir))
	t.Cleanup(Close)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var backups int
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), logName+".") {
			backups++
		}
	}
	assert.Equal(t, 1, backups)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(maxLogSize))
}
