package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	derror "github.com/hanfei1991/jobsweep/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.Equal(t, time.Second, cfg.Poll.BatchInterval.Duration())
	require.Equal(t, 100*time.Millisecond, cfg.Poll.SearchInterval.Duration())
	require.Zero(t, cfg.Poll.Timeout)
	require.Greater(t, cfg.Backend.Concurrency, 0)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestPollConfigAdjust(t *testing.T) {
	t.Parallel()

	pc := PollConfig{
		BatchInterval:  0,
		SearchInterval: Duration(50 * time.Millisecond),
		Timeout:        Duration(10 * time.Millisecond),
	}.Adjust()
	require.Equal(t, time.Millisecond, pc.BatchInterval.Duration())
	// timeout is raised to the longest interval
	require.Equal(t, 50*time.Millisecond, pc.Timeout.Duration())

	pc = PollConfig{Timeout: Duration(-time.Second)}.Adjust()
	require.Zero(t, pc.Timeout)
}

func TestBackendConfigAdjust(t *testing.T) {
	t.Parallel()

	bc := BackendConfig{Concurrency: -1, StartRate: 5}.Adjust()
	require.Greater(t, bc.Concurrency, 0)
	require.Equal(t, 1, bc.StartBurst)
}

func TestDecodeTOML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "sweep.toml", `
[poll]
batch-interval = "2s"
search-interval = "250ms"
timeout = "1h"

[backend]
concurrency = 8
start-rate = 20.0
start-burst = 4

[log]
level = "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, cfg.Poll.BatchInterval.Duration())
	require.Equal(t, 250*time.Millisecond, cfg.Poll.SearchInterval.Duration())
	require.Equal(t, time.Hour, cfg.Poll.Timeout.Duration())
	require.Equal(t, 8, cfg.Backend.Concurrency)
	require.Equal(t, 20.0, cfg.Backend.StartRate)
	require.Equal(t, 4, cfg.Backend.StartBurst)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "text", cfg.Log.Format)
}

func TestDecodeYAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "sweep.yaml", `
poll:
  search-interval: 10ms
backend:
  concurrency: 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 10*time.Millisecond, cfg.Poll.SearchInterval.Duration())
	// untouched values keep their defaults
	require.Equal(t, time.Second, cfg.Poll.BatchInterval.Duration())
	require.Equal(t, 3, cfg.Backend.Concurrency)
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	_, err := Load(writeFile(t, "sweep.toml", "[poll]\nunknown-key = 1\n"))
	require.True(t, derror.ErrConfigUnknownItem.Equal(err), "%v", err)

	_, err = Load(writeFile(t, "sweep.yml", "poll:\n  unknown-key: 1\n"))
	require.Contains(t, err.Error(), "ErrDecodeConfigFile")

	_, err = Load(writeFile(t, "sweep.toml", "[poll]\nbatch-interval = \"soon\"\n"))
	require.Contains(t, err.Error(), "ErrDecodeConfigFile")

	_, err = Load(writeFile(t, "sweep.json", "{}"))
	require.True(t, derror.ErrConfigUnsupportedFile.Equal(err), "%v", err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
