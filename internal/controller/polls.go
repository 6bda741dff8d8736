package controller

import (
	"context"

	"github.com/marcin-skalski/appwatch/internal/api"
	"github.com/marcin-skalski/appwatch/internal/feed"
	"github.com/marcin-skalski/appwatch/internal/stats"
)

// Poll failures go to the developer log only. The next tick is the retry.

func (c *Controller) pollStatus(ctx context.Context) {
	st, err := c.backend.Status(ctx)
	c.post(func(context.Context) { c.applyStatus(st, err) })
}

func (c *Controller) pollHistory(ctx context.Context) {
	c.fetchHistory(ctx)
}

func (c *Controller) pollRecentLogs(ctx context.Context) {
	logs, err := c.backend.RecentLogs(ctx)
	c.post(func(context.Context) { c.applyRecentLogs(logs, err) })
}

func (c *Controller) fetchHistory(ctx context.Context) {
	go func() {
		history, err := c.backend.History(ctx)
		c.post(func(context.Context) { c.applyHistory(history, err) })
	}()
}

func (c *Controller) applyStatus(st api.SessionStatus, err error) {
	if err != nil {
		if c.connected {
			c.logger.Warn("status poll failed", "err", err)
		} else {
			c.logger.Debug("status poll failed", "err", err)
		}
		c.connected = false
		return
	}

	if !c.connected {
		c.logger.Info("server reachable", "server", c.cfg.ServerURL)
	}
	c.connected = true

	if st.MonitoringActive != c.active {
		c.logger.Info("monitoring state changed", "active", st.MonitoringActive, "interval", st.CheckInterval)
	}
	c.active = st.MonitoringActive
	c.status = st

	for _, e := range c.captcha.Update(st, c.now()) {
		c.logger.Debug("captcha effect", "effect", e.Kind.String(), "text", e.Text)
	}
}

func (c *Controller) applyHistory(history []api.HistoryEntry, err error) {
	if err != nil {
		c.logger.Warn("history poll failed", "err", err)
		return
	}
	c.summary = stats.Aggregate(history, c.cfg.UI.HistoryRows)
	c.haveHistory = true
}

func (c *Controller) applyRecentLogs(logs []api.LogEntry, err error) {
	if err != nil {
		c.logger.Debug("recent logs poll failed", "err", err)
		return
	}

	batch := make([]feed.Entry, len(logs))
	for i, l := range logs {
		batch[i] = remoteEntry(l)
	}
	fresh := c.feed.Merge(batch)
	for i := len(fresh) - 1; i >= 0; i-- {
		c.logger.Info(fresh[i].Message, "source", "remote", "severity", fresh[i].Level.String())
	}
}

func remoteEntry(l api.LogEntry) feed.Entry {
	return feed.Entry{
		Time:    l.Timestamp.Format(feed.TimeLayout),
		Level:   feed.ParseLevel(l.Level),
		Message: l.Message,
		Source:  feed.SourceRemote,
	}
}
