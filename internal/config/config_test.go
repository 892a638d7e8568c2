package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spends/internal/common"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "/home/tester/.local/share/spends/spends.db", cfg.Database.Path)
	assert.Equal(t, "none", cfg.LLM.Provider)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 60*time.Second, cfg.LLM.ImageTimeout)
	assert.Equal(t, 10, cfg.Processing.ChunkSize)
	assert.Equal(t, 100, cfg.Processing.MessageLimit)
	assert.Equal(t, 50*time.Millisecond, cfg.Processing.MinJitter)
	assert.Equal(t, 200*time.Millisecond, cfg.Processing.MaxJitter)
	assert.Equal(t, 200*time.Millisecond, cfg.Processing.ChunkPause)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /tmp/spends-test.db
logging:
  level: debug
  format: json
llm:
  provider: gemini
  api_key: secret
  model: gemini-2.5-flash
  timeout: 10s
processing:
  chunk_size: 5
  min_jitter: 0s
  max_jitter: 0s
`), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/spends-test.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 5, cfg.Processing.ChunkSize)
	assert.Zero(t, cfg.Processing.MaxJitter)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		want  error
	}{
		{"unknown provider", "llm.provider", "mystery", common.ErrInvalidConfig},
		{"bad log level", "logging.level", "loud", common.ErrInvalidConfig},
		{"zero chunk", "processing.chunk_size", 0, common.ErrInvalidConfig},
		{"jitter inverted", "processing.min_jitter", time.Second, common.ErrInvalidConfig},
		{"missing key", "llm.provider", "anthropic", common.ErrMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTimeLocation(t *testing.T) {
	loc, err := ProcessingConfig{}.TimeLocation()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = ProcessingConfig{Location: "Asia/Kolkata"}.TimeLocation()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())

	_, err = ProcessingConfig{Location: "Nowhere/Land"}.TimeLocation()
	require.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("SPENDS_DIR", "/data")

	assert.Equal(t, "/home/tester/x.db", ExpandPath("~/x.db"))
	assert.Equal(t, "/data/x.db", ExpandPath("$SPENDS_DIR/x.db"))
	assert.Equal(t, "", ExpandPath(""))
}
