package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/blmreader/pkg/config"
)

func TestNew_Logfmt(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, config.Logging{Level: "info", Format: "logfmt"})
	require.NoError(t, err)

	level.Debug(logger).Log("msg", "hidden")
	level.Info(logger).Log("msg", "indexed records", "records", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=info")
	assert.Contains(t, out, `msg="indexed records"`)
	assert.Contains(t, out, "records=3")
	assert.Contains(t, out, "ts=")
	assert.Contains(t, out, "caller=")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, config.Logging{Level: "debug", Format: "json"})
	require.NoError(t, err)

	level.Debug(logger).Log("msg", "scanned sections")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "scanned sections", line["msg"])
}

func TestNew_LevelFilter(t *testing.T) {
	testCases := []struct {
		level string
		want  []string
	}{
		{"debug", []string{"d", "i", "w", "e"}},
		{"info", []string{"i", "w", "e"}},
		{"warn", []string{"w", "e"}},
		{"error", []string{"e"}},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New(&buf, config.Logging{Level: tc.level})
			require.NoError(t, err)

			level.Debug(logger).Log("msg", "d")
			level.Info(logger).Log("msg", "i")
			level.Warn(logger).Log("msg", "w")
			level.Error(logger).Log("msg", "e")

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			assert.Len(t, lines, len(tc.want))
			for i, msg := range tc.want {
				assert.Contains(t, lines[i], "msg="+msg)
			}
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(&bytes.Buffer{}, config.Logging{Level: "verbose"})
	assert.Error(t, err)

	_, err = New(&bytes.Buffer{}, config.Logging{Format: "xml"})
	assert.Error(t, err)
}
