package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	require.Equal(t, "http://localhost:5000", cfg.ServerURL)
	require.Equal(t, time.Second, cfg.Polling.Status)
	require.Equal(t, 5*time.Second, cfg.Polling.History)
	require.Equal(t, 500*time.Millisecond, cfg.Polling.Logs)
	require.Equal(t, 30, cfg.Monitor.MinInterval)
	require.Equal(t, 50, cfg.Feed.LocalCap)
	require.Equal(t, 100, cfg.Feed.MergedCap)
	require.Equal(t, 3*time.Second, cfg.UI.ToastDuration)
	require.Equal(t, 2*time.Second, cfg.UI.CheckNowCooldown)
	require.Equal(t, 10, cfg.UI.HistoryRows)
}

func TestDefaultMatchesLoadDefaults(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, loaded, Default())
	require.NoError(t, Default().Validate())
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
server_url: https://watch.example.com
request_timeout: 3s
log:
  level: debug
polling:
  status: 2s
  logs: 250ms
monitor:
  min_interval: 45
  default_interval: 90
ui:
  check_now_cooldown: 1s
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "https://watch.example.com", cfg.ServerURL)
	require.Equal(t, 3*time.Second, cfg.RequestTimeout)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 2*time.Second, cfg.Polling.Status)
	require.Equal(t, 5*time.Second, cfg.Polling.History)
	require.Equal(t, 250*time.Millisecond, cfg.Polling.Logs)
	require.Equal(t, 45, cfg.Monitor.MinInterval)
	require.Equal(t, 90, cfg.Monitor.DefaultInterval)
	require.Equal(t, time.Second, cfg.UI.CheckNowCooldown)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad duration":     "polling:\n  status: soon\n",
		"negative cadence": "polling:\n  logs: -1s\n",
		"bad scheme":       "server_url: ftp://host\n",
		"bad level":        "log:\n  level: loud\n",
		"default too low":  "monitor:\n  min_interval: 30\n  default_interval: 10\n",
		"caps inverted":    "feed:\n  local_cap: 80\n  merged_cap: 40\n",
		"not yaml":         "server_url: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
		})
	}
}
