package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelRouting(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l := log.New()
	cleanup, err := setup(l, "", "", &stdout, &stderr)
	require.NoError(t, err)
	defer cleanup()

	l.WithField("material_id", 7).Info("material created")
	l.Warn("slow query")
	l.Error("database unavailable")
	l.Debug("hidden at info level")

	out := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, out, 2)
	assert.Contains(t, out[0], `"msg":"material created"`)
	assert.Contains(t, out[1], `"level":"warning"`)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(out[0]), &entry))
	assert.Equal(t, 7.0, entry["material_id"])
	assert.NotEmpty(t, entry["time"])

	assert.Contains(t, stderr.String(), "database unavailable")
	assert.NotContains(t, stderr.String(), "material created")
}

func TestLogFileTee(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recycle.log")
	var stdout, stderr bytes.Buffer
	l := log.New()
	cleanup, err := setup(l, "debug", path, &stdout, &stderr)
	require.NoError(t, err)

	l.Debug("debug line")
	l.Error("error line")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug line")
	assert.Contains(t, string(data), "error line")
}

func TestInvalidLevel(t *testing.T) {
	_, err := setup(log.New(), "loud", "", &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}
