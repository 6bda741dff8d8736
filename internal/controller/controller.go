// Package controller drives the monitoring dashboard. It owns every piece
// of view state and mutates it from a single event loop: network calls run
// in their own goroutines and hand their results back to the loop, which
// applies them one at a time in completion order.
package controller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/marcin-skalski/appwatch/internal/api"
	"github.com/marcin-skalski/appwatch/internal/captcha"
	"github.com/marcin-skalski/appwatch/internal/config"
	"github.com/marcin-skalski/appwatch/internal/feed"
	"github.com/marcin-skalski/appwatch/internal/scheduler"
	"github.com/marcin-skalski/appwatch/internal/stats"
	"github.com/marcin-skalski/appwatch/internal/toast"
	"github.com/marcin-skalski/appwatch/internal/tui"
)

// Backend is the remote check server.
type Backend interface {
	Start(ctx context.Context, intervalSeconds int) error
	Stop(ctx context.Context) error
	CheckNow(ctx context.Context) (string, error)
	Status(ctx context.Context) (api.SessionStatus, error)
	History(ctx context.Context) ([]api.HistoryEntry, error)
	RecentLogs(ctx context.Context) ([]api.LogEntry, error)
}

type event func(ctx context.Context)

const eventBuffer = 256

type Controller struct {
	cfg     *config.Config
	backend Backend
	logger  *slog.Logger
	sched   *scheduler.Scheduler
	now     func() time.Time

	events chan event
	done   chan struct{}

	// Owned by the event loop.
	active       bool
	connected    bool
	status       api.SessionStatus
	summary      stats.Summary
	haveHistory  bool
	feed         *feed.Feed
	toasts       *toast.Notifier
	captcha      captcha.Panel
	checkNowBusy bool

	snapMu sync.RWMutex
	pub    published
}

// published is the loop state as of the last event. Time-dependent parts
// (toast expiry, captcha transitions) are resolved when a snapshot is read.
type published struct {
	snap  tui.Snapshot
	panel captcha.Panel
	toast toast.Toast
}

func New(cfg *config.Config, backend Backend, logger *slog.Logger) *Controller {
	c := &Controller{
		cfg:     cfg,
		backend: backend,
		logger:  logger,
		now:     time.Now,
		events:  make(chan event, eventBuffer),
		done:    make(chan struct{}),
		feed:    feed.New(cfg.Feed.LocalCap, cfg.Feed.MergedCap),
		toasts:  toast.NewNotifier(cfg.UI.ToastDuration),
		captcha: captcha.NewPanel(cfg.UI.CaptchaFade, cfg.UI.CaptchaPulse),
	}
	c.sched = scheduler.New(
		scheduler.Task{Interval: cfg.Polling.Status, Run: c.pollStatus},
		scheduler.Task{Interval: cfg.Polling.History, Run: c.pollHistory},
		scheduler.Task{Interval: cfg.Polling.Logs, Run: c.pollRecentLogs},
		logger,
	)
	c.publish()
	return c
}

// Run starts polling and processes events until ctx is cancelled, then
// tears every polling task down.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)

	c.logger.Info("controller started",
		"server", c.cfg.ServerURL,
		"status_every", c.cfg.Polling.Status,
		"history_every", c.cfg.Polling.History,
		"logs_every", c.cfg.Polling.Logs)

	c.sched.Start(ctx)
	c.publish()

	for {
		select {
		case <-ctx.Done():
			c.sched.StopAll()
			c.logger.Info("controller stopped")
			return nil
		case ev := <-c.events:
			c.dispatch(ctx, ev)
		}
	}
}

func (c *Controller) dispatch(ctx context.Context, ev event) {
	ev(ctx)
	c.publish()
}

// post queues ev for the loop. It gives up once the loop has exited.
func (c *Controller) post(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// goRequest runs call off the loop and applies then on the loop with the
// result.
func (c *Controller) goRequest(ctx context.Context, call func(context.Context) error, then func(context.Context, error)) {
	go func() {
		err := call(ctx)
		c.post(func(ctx context.Context) { then(ctx, err) })
	}()
}

// StartMonitoring asks the server to start checking every interval seconds.
// interval is the raw user input.
func (c *Controller) StartMonitoring(interval string) {
	c.post(func(ctx context.Context) { c.startMonitoring(ctx, interval) })
}

func (c *Controller) StopMonitoring() {
	c.post(c.stopMonitoring)
}

func (c *Controller) CheckNow() {
	c.post(c.checkNow)
}

func (c *Controller) RefreshHistory() {
	c.post(c.refreshHistory)
}

func (c *Controller) ClearLogs() {
	c.post(c.clearLogs)
}

func (c *Controller) controls() tui.Controls {
	return tui.Controls{
		StartEnabled:     !c.active,
		StopEnabled:      c.active,
		IntervalEditable: !c.active,
		CheckNowEnabled:  !c.checkNowBusy,
	}
}

func (c *Controller) publish() {
	snap := tui.Snapshot{
		ServerURL:        c.cfg.ServerURL,
		Connected:        c.connected,
		MonitoringActive: c.active,
		LastCheckStatus:  c.status.LastCheckStatus,
		CheckInterval:    c.status.CheckInterval,
		Controls:         c.controls(),
		Stats:            statsState(c.summary, c.haveHistory),
		Log:              logLines(c.feed.Entries()),
		PollingTasks:     c.sched.Running(),
	}
	if t := c.status.LastCheckTime; t != nil && !t.IsZero() {
		snap.LastCheckTime = t.Format(time.DateTime)
	}

	c.snapMu.Lock()
	c.pub = published{snap: snap, panel: c.captcha, toast: c.toasts.Last()}
	c.snapMu.Unlock()
}

// GetSnapshot returns the dashboard state as of now. It is safe to call from
// any goroutine.
func (c *Controller) GetSnapshot() tui.Snapshot {
	c.snapMu.RLock()
	p := c.pub
	c.snapMu.RUnlock()

	now := c.now()
	snap := p.snap
	snap.Timestamp = now
	snap.Captcha = captchaState(p.panel.View(now))
	if t, ok := p.toast.ActiveAt(now); ok {
		snap.Toast = &tui.ToastState{Text: t.Text, Severity: t.Severity.String()}
	}
	return snap
}

func statsState(s stats.Summary, loaded bool) tui.StatsState {
	out := tui.StatsState{
		Loaded:     loaded,
		Empty:      s.Empty,
		Total:      s.Total,
		Successful: s.Successful,
		Failed:     s.Failed,
		Found:      s.Found,
		Rows:       make([]tui.HistoryRow, 0, len(s.Rows)),
	}
	for _, r := range s.Rows {
		out.Rows = append(out.Rows, tui.HistoryRow{
			Time:    r.Timestamp.Format(time.DateTime),
			Outcome: outcomeName(r.Outcome),
			Badge:   r.Outcome.Badge(),
			Label:   r.Label,
		})
	}
	return out
}

func outcomeName(o stats.Outcome) string {
	switch o {
	case stats.OutcomeFound:
		return "found"
	case stats.OutcomeError:
		return "error"
	default:
		return "check"
	}
}

func logLines(entries []feed.Entry) []tui.LogLine {
	out := make([]tui.LogLine, len(entries))
	for i, e := range entries {
		out[i] = tui.LogLine{
			Time:    e.Time,
			Level:   e.Level.String(),
			Message: e.Message,
			Remote:  e.Source == feed.SourceRemote,
		}
	}
	return out
}

func captchaState(v captcha.View) tui.CaptchaState {
	fade := ""
	switch v.Fade {
	case captcha.FadeOut:
		fade = "out"
	case captcha.FadeIn:
		fade = "in"
	}
	return tui.CaptchaState{
		Visible:  v.Visible,
		Entering: v.Entering,
		Image:    v.Image,
		Fade:     fade,
		Text:     v.Text,
		Pulsing:  v.Pulsing,
	}
}
