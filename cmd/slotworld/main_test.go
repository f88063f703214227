package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/argus-labs/slotworld/internal/testutils"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArchive(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "testworld.yaml"), []byte(testutils.LevelYAML), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "jsonworld.json"), []byte(testutils.LevelJSON), 0o600))
	return root
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := Config{LogLevel: "info", LogFormat: "pretty", FrameRate: 30}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "json debug", mutate: func(c *Config) { c.LogFormat = "json"; c.LogLevel = "DEBUG" }},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
		{name: "bad format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: true},
		{name: "zero frame rate", mutate: func(c *Config) { c.FrameRate = 0 }, wantErr: true},
		{name: "frame rate too high", mutate: func(c *Config) { c.FrameRate = 5000 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_FramePeriod(t *testing.T) {
	t.Parallel()
	cfg := Config{FrameRate: 50}
	assert.Equal(t, 20*time.Millisecond, cfg.framePeriod())
}

func TestLevelsCmd(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"levels", "--archive", writeArchive(t)})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "jsonworld.json\ntestworld.yaml\n", out.String())
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestCloseEngine_LogsError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	closeEngine(closerFunc(func() error { return nil }), logger)
	assert.Empty(t, buf.String())

	closeEngine(closerFunc(func() error { return eris.New("archive locked") }), logger)
	assert.Contains(t, buf.String(), "failed to close engine")
	assert.Contains(t, buf.String(), "archive locked")
}

func TestCheckCmd(t *testing.T) {
	t.Parallel()

	root := writeArchive(t)
	broken := filepath.Join(root, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("name: broken\n"), 0o600))

	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"check", filepath.Join(root, "testworld.yaml")})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "ok (2 static meshes, 2 vobs, 1 npcs)")

	cmd = newRootCmd()
	out.Reset()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"check", filepath.Join(root, "testworld.yaml"), broken})
	require.Error(t, cmd.Execute())
	assert.Contains(t, out.String(), "broken.yaml:")
}

func TestRun_LoadsLevelsAndStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	cfg := Config{LogLevel: "info", LogFormat: "json", FrameRate: 200, Server: false}
	flags := rootFlags{levels: []string{"testworld.yaml"}, archive: writeArchive(t)}
	go func() { done <- run(ctx, cfg, flags, zerolog.Nop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop")
	}
}

func TestRun_UnknownLevel(t *testing.T) {
	t.Parallel()

	cfg := Config{LogLevel: "info", LogFormat: "json", FrameRate: 30}
	flags := rootFlags{levels: []string{"nowhere.yaml"}, archive: writeArchive(t)}
	assert.Error(t, run(context.Background(), cfg, flags, zerolog.Nop()))
}
