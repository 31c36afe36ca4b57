package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":  zerolog.DebugLevel,
		" WARN ": zerolog.WarnLevel,
		"error":  zerolog.ErrorLevel,
		"":       zerolog.InfoLevel,
		"loud":   zerolog.InfoLevel,
	}
	for name, want := range tests {
		assert.Equal(t, want, ParseLevel(name), "%q", name)
	}
}

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { Configure(Config{Level: "info", Pretty: true}) })

	var out bytes.Buffer
	file := filepath.Join(t.TempDir(), "api.log")
	lgr := Configure(Config{Level: "warn", Output: &out, File: file, MaxSizeMB: 1})

	lgr.Info().Msg("dropped")
	Warn().Str("classID", "c1").Msg("seat count drifted")

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var event map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &event))
	assert.Equal(t, "warn", event["level"])
	assert.Equal(t, Service, event["service"])
	assert.Equal(t, "c1", event["classID"])
	assert.FileExists(t, file)
}
