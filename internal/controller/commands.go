package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/marcin-skalski/appwatch/internal/api"
	"github.com/marcin-skalski/appwatch/internal/feed"
	"github.com/marcin-skalski/appwatch/internal/toast"
)

// Every command outcome, success or failure, records exactly one feed entry
// and one toast. A successful response only sets the session flag as a hint;
// the next status poll is authoritative.

func (c *Controller) startMonitoring(ctx context.Context, raw string) {
	if !c.controls().StartEnabled {
		c.logger.Debug("start ignored, monitoring already active")
		return
	}

	interval, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || interval < c.cfg.Monitor.MinInterval {
		c.logger.Debug("start rejected", "input", raw)
		c.notify(fmt.Sprintf("Check interval must be at least %d seconds", c.cfg.Monitor.MinInterval), toast.Error)
		return
	}

	c.logger.Info("starting monitoring", "interval", interval)
	c.goRequest(ctx,
		func(ctx context.Context) error { return c.backend.Start(ctx, interval) },
		func(ctx context.Context, err error) {
			if err != nil {
				c.commandFailed("start", err)
				return
			}
			c.active = true
			c.record(feed.LevelSuccess, fmt.Sprintf("Monitoring started (every %ds)", interval))
			c.notify("Monitoring started", toast.Success)
			c.sched.Start(ctx)
		})
}

func (c *Controller) stopMonitoring(ctx context.Context) {
	if !c.controls().StopEnabled {
		c.logger.Debug("stop ignored, monitoring not active")
		return
	}

	c.logger.Info("stopping monitoring")
	c.goRequest(ctx, c.backend.Stop, func(_ context.Context, err error) {
		if err != nil {
			c.commandFailed("stop", err)
			return
		}
		c.active = false
		c.record(feed.LevelWarning, "Monitoring stopped")
		c.notify("Monitoring stopped", toast.Warning)
	})
}

// checkNow keeps its control disabled from the moment the request is issued
// until the cool-down has elapsed after it completes.
func (c *Controller) checkNow(ctx context.Context) {
	if c.checkNowBusy {
		c.logger.Debug("check-now ignored, cooling down")
		return
	}
	c.checkNowBusy = true

	c.logger.Info("running check now")
	var result string
	c.goRequest(ctx,
		func(ctx context.Context) error {
			var err error
			result, err = c.backend.CheckNow(ctx)
			return err
		},
		func(ctx context.Context, err error) {
			time.AfterFunc(c.cfg.UI.CheckNowCooldown, func() {
				c.post(func(context.Context) { c.checkNowBusy = false })
			})

			if err != nil {
				c.commandFailed("check-now", err)
				return
			}
			c.record(feed.LevelSuccess, "Check completed: "+result)
			c.notify("Check completed", toast.Success)
			c.fetchHistory(ctx)
		})
}

func (c *Controller) refreshHistory(ctx context.Context) {
	c.record(feed.LevelInfo, "Refreshing history...")
	c.fetchHistory(ctx)
	c.notify("History refreshed", toast.Success)
}

func (c *Controller) clearLogs(context.Context) {
	c.feed.Reset(c.now(), feed.LevelInfo, "Logs cleared")
	c.notify("Logs cleared", toast.Success)
}

func (c *Controller) commandFailed(command string, err error) {
	var te *api.TransportError
	transport := errors.As(err, &te)
	c.logger.Warn("command failed", "command", command, "transport", transport, "err", err)

	if transport {
		c.record(feed.LevelError, "Connection error: "+te.Err.Error())
		c.notify("Could not reach the server", toast.Error)
		return
	}

	msg := err.Error()
	c.record(feed.LevelError, fmt.Sprintf("%s error: %s", commandTitle(command), msg))
	c.notify(msg, toast.Error)
}

func commandTitle(command string) string {
	switch command {
	case "start":
		return "Start"
	case "stop":
		return "Stop"
	default:
		return "Check"
	}
}

// record appends a local entry to the feed and mirrors it to the developer
// log, which is all headless mode shows.
func (c *Controller) record(level feed.Level, msg string) {
	c.feed.Push(c.now(), level, msg)
	c.logger.Info(msg, "source", "local", "severity", level.String())
}

func (c *Controller) notify(text string, sev toast.Severity) {
	c.toasts.Show(c.now(), text, sev)
	c.logger.Debug("toast", "text", text, "severity", sev.String())
}
