package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcin-skalski/appwatch/internal/api"
	"github.com/marcin-skalski/appwatch/internal/config"
	"github.com/marcin-skalski/appwatch/internal/logging"
)

type checkServer struct {
	active   atomic.Bool
	interval atomic.Int64
}

func (s *checkServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(v))
	}

	mux.HandleFunc("/api/start", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Interval int `json:"interval"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		s.interval.Store(int64(body.Interval))
		s.active.Store(true)
		writeJSON(w, map[string]any{"status": "started"})
	})
	mux.HandleFunc("/api/stop", func(w http.ResponseWriter, r *http.Request) {
		s.active.Store(false)
		writeJSON(w, map[string]any{"status": "stopped"})
	})
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"monitoring_active": s.active.Load(),
			"last_check_time":   1714557600,
			"last_check_status": "No appointments",
			"check_interval":    s.interval.Load(),
			"captcha_image":     nil,
			"captcha_text":      nil,
		})
	})
	mux.HandleFunc("/api/history", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{
			{"timestamp": "2024-05-01T10:00:00", "status": "success", "appointment_found": false},
			{"timestamp": "2024-05-01T09:00:00", "status": "error", "error": "timeout"},
		})
	})
	mux.HandleFunc("/api/logs/recent", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"logs": []map[string]any{
			{"timestamp": "2024-05-01T10:00:00", "level": "INFO", "message": "page loaded"},
		}})
	})
	return mux
}

func TestRunAgainstServer(t *testing.T) {
	cs := &checkServer{}
	srv := httptest.NewServer(cs.handler(t))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.ServerURL = srv.URL
	cfg.Polling.Status = 20 * time.Millisecond
	cfg.Polling.History = 20 * time.Millisecond
	cfg.Polling.Logs = 20 * time.Millisecond

	client := api.NewWithClient(srv.URL, srv.Client(), time.Second, logging.Discard())
	c := New(cfg, client, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		snap := c.GetSnapshot()
		return snap.Connected && snap.Stats.Loaded && len(snap.Log) > 0
	}, 2*time.Second, 10*time.Millisecond)

	snap := c.GetSnapshot()
	assert.Equal(t, 2, snap.Stats.Total)
	assert.Equal(t, 1, snap.Stats.Failed)
	assert.Equal(t, "page loaded", snap.Log[0].Message)
	assert.True(t, snap.Log[0].Remote)
	assert.NotEmpty(t, snap.LastCheckTime)
	assert.Equal(t, 3, snap.PollingTasks)

	c.StartMonitoring("45")
	require.Eventually(t, func() bool {
		snap := c.GetSnapshot()
		return snap.MonitoringActive && snap.CheckInterval == 45
	}, 2*time.Second, 10*time.Millisecond)
	assert.False(t, c.GetSnapshot().Controls.IntervalEditable)

	c.StopMonitoring()
	require.Eventually(t, func() bool {
		return !c.GetSnapshot().MonitoringActive
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, c.GetSnapshot().Controls.StartEnabled)

	cancel()
	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 0, c.sched.Running())
}
