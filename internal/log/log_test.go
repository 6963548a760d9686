package log

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mangatoc.log")

	logger, closer := New(Options{LogFile: path})
	logger.Debug("toc resolved", zap.String("source", "example"), zap.Int("chapters", 3))
	_ = logger.Sync()
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "toc resolved", entry["msg"])
	assert.Equal(t, "example", entry["source"])
	assert.EqualValues(t, 3, entry["chapters"])
	assert.NotEmpty(t, entry["caller"])
}

func TestNew_NoFile(t *testing.T) {
	logger, closer := New(Options{})
	require.NotNil(t, logger)
	assert.NoError(t, closer.Close())
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	debug, _ := New(Options{Debug: true})
	assert.True(t, debug.Core().Enabled(zap.DebugLevel))
}
