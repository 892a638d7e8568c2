package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spends/internal/config"
	"github.com/Veraticus/spends/internal/engine"
	"github.com/Veraticus/spends/internal/inbox"
	"github.com/Veraticus/spends/internal/metrics"
	"github.com/Veraticus/spends/internal/parser"
	"github.com/Veraticus/spends/internal/testutil"
)

func TestReadMessage(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		stdin   string
		want    string
		wantErr bool
	}{
		{"argument", []string{"Rs 10 debited"}, "ignored", "Rs 10 debited", false},
		{"dash reads stdin", []string{"-"}, "  Rs 20 credited \n", "Rs 20 credited", false},
		{"no argument reads stdin", nil, "Rs 30 debited", "Rs 30 debited", false},
		{"empty stdin", nil, "\n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readMessage(tt.args, strings.NewReader(tt.stdin))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOrchestratorOptionsFromConfig(t *testing.T) {
	v := viper.New()
	v.Set("processing.chunk_size", 4)
	v.Set("processing.min_jitter", "0s")
	v.Set("processing.max_jitter", "10ms")
	v.Set("llm.ready_timeout", "5s")
	cfg, err := config.Load(v)
	require.NoError(t, err)

	opts := orchestratorOptions(cfg, nil)
	assert.Equal(t, 4, opts.ChunkSize)
	assert.Equal(t, time.Duration(0), opts.MinJitter)
	assert.Equal(t, 10*time.Millisecond, opts.MaxJitter)
	assert.Equal(t, 5*time.Second, opts.ReadyTimeout)
	assert.Equal(t, cfg.LLM.Timeout, opts.GenerationTimeout)
	assert.Equal(t, engine.DefaultOptions().ReadyRetry, opts.ReadyRetry)
}

func TestCreateGeneratorWithoutProvider(t *testing.T) {
	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	gen, err := createGenerator(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, gen)

	rules, err := newRules(cfg)
	require.NoError(t, err)
	ext, closeExt := newExtractor(cfg, gen, rules, nil)
	defer closeExt()
	assert.Nil(t, ext)
}

func TestRunWithProgress(t *testing.T) {
	store := testutil.SetupTestDB(t)
	opts := engine.DefaultOptions()
	opts.MinJitter, opts.MaxJitter, opts.ChunkPause = 0, 0, 0
	opts.ChunkSize = 4
	opts.Metrics = metrics.New()
	orch := engine.New(store, parser.New(parser.WithLocation(time.UTC)), opts)

	t.Run("with progress bar", func(t *testing.T) {
		var out bytes.Buffer
		status, err := runWithProgress(context.Background(), orch, inbox.Samples(), nil, &out)
		require.NoError(t, err)
		assert.False(t, status.IsProcessing)
		assert.Equal(t, 13, status.ProcessedMessages)
		assert.Equal(t, 13, status.DetectedTransactions)
	})

	t.Run("without progress bar", func(t *testing.T) {
		status, err := runWithProgress(context.Background(), orch, inbox.Samples()[:3], nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, status.ProcessedMessages)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var out bytes.Buffer
		_, err := runWithProgress(ctx, orch, inbox.Samples(), nil, &out)
		require.ErrorIs(t, err, context.Canceled)
	})
}
