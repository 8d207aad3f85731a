package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, FormatConsole, cfg.Format)

	cfg = Config{Level: "debug", Format: FormatJSON}
	cfg.ApplyDefaults()
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, FormatJSON, cfg.Format)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		errMsg string
	}{
		{"valid", Config{Level: "info", Format: "console"}, ""},
		{"valid json", Config{Level: "debug", Format: "json"}, ""},
		{"bad level", Config{Level: "loud", Format: "json"}, "log.level must be one of"},
		{"trace not offered", Config{Level: "trace", Format: "json"}, "log.level must be one of"},
		{"bad format", Config{Level: "info", Format: "xml"}, "log.format must be one of"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.errMsg)
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: FormatJSON}, &buf)

	log.Debug().Int("tasks", 4).Msg("loaded")

	line := buf.String()
	require.True(t, gjson.Valid(line), line)
	assert.Equal(t, "debug", gjson.Get(line, "level").String())
	assert.Equal(t, "loaded", gjson.Get(line, "message").String())
	assert.Equal(t, int64(4), gjson.Get(line, "tasks").Int())
	assert.True(t, gjson.Get(line, "time").Exists())
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: FormatJSON}, &buf)

	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_InvalidLevelFallsBack(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "loud", Format: FormatJSON}, &buf)

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_LeavesGlobalLevel(t *testing.T) {
	before := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(before) })

	New(Config{Level: "debug", Format: FormatJSON}, &bytes.Buffer{})
	New(Config{Level: "error", Format: FormatJSON}, &bytes.Buffer{})
	assert.Equal(t, before, zerolog.GlobalLevel())
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: FormatConsole, NoColor: true}, &buf)

	log.Info().Str("file", "plan.yaml").Msg("loaded")

	out := buf.String()
	assert.Contains(t, out, "INF")
	assert.Contains(t, out, "loaded")
	assert.Contains(t, out, "file=plan.yaml")
	assert.NotContains(t, out, "\x1b[")
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Error().Msg("nothing")
}
