package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yunseokse0/viewtest/internal/config"
)

// parse binds flags the same way Execute would and returns the resulting config.
func parse(t *testing.T, argv ...string) (*config.AppConfig, error) {
	t.Helper()

	opts := &options{}
	cmd := newRootCmd(opts)
	require.NoError(t, cmd.ParseFlags(argv))

	return buildConfig(cmd, opts, cmd.Flags().Args())
}

func TestBuildConfigDefaults(t *testing.T) {
	cfg, err := parse(t, "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", cfg.Target.URL)
	assert.Equal(t, 5, cfg.Run.Workers)
	assert.True(t, cfg.Browser.Headless)
	assert.False(t, cfg.Run.Continuous)
	assert.Equal(t, 5*time.Second, cfg.Visit.MinDwell)
	assert.Equal(t, 15*time.Second, cfg.Visit.MaxDwell)
}

func TestBuildConfigFlags(t *testing.T) {
	cfg, err := parse(t,
		"https://example.com/watch",
		"-t", "3",
		"--no-headless",
		"--min-delay", "2",
		"--max-delay", "4",
		"--continuous",
		"--interval", "10",
		"--format", "jsonl",
		"-o", "out.jsonl",
	)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Run.Workers)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 2*time.Second, cfg.Visit.MinDwell)
	assert.Equal(t, 4*time.Second, cfg.Visit.MaxDwell)
	assert.True(t, cfg.Run.Continuous)
	assert.Equal(t, 10*time.Second, cfg.Run.Interval)
	assert.Equal(t, config.FormatJSONL, cfg.IO.OutputFormat)
	assert.Equal(t, "out.jsonl", cfg.IO.OutputFile)
}

func TestBuildConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		argv []string
	}{
		{name: "no url", argv: nil},
		{name: "zero threads", argv: []string{"https://example.com", "-t", "0"}},
		{name: "negative threads", argv: []string{"https://example.com", "--threads", "-1"}},
		{name: "min above max", argv: []string{"https://example.com", "--min-delay", "20", "--max-delay", "10"}},
		{name: "min above default max", argv: []string{"https://example.com", "--min-delay", "30"}},
		{name: "bad scheme", argv: []string{"file:///etc/hosts"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.argv...)
			assert.ErrorIs(t, err, config.ErrInvalid)
		})
	}
}

func TestBuildConfigFileWithOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewtest.yaml")
	data := `
target:
  url: https://example.com/from-file
run:
  workers: 8
visit:
  min_dwell: 1s
  max_dwell: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := parse(t, "--config", path, "-t", "2")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/from-file", cfg.Target.URL)
	assert.Equal(t, 2, cfg.Run.Workers)
	assert.Equal(t, time.Second, cfg.Visit.MinDwell)
	assert.Equal(t, 2*time.Second, cfg.Visit.MaxDwell)
}

func TestRootCommandRejectsExtraArgs(t *testing.T) {
	cmd := newRootCmd(&options{})
	cmd.SetArgs([]string{"https://a.example", "https://b.example"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	assert.Error(t, cmd.Execute())
}
