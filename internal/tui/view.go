package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const maxMessageWidth = 100

func renderHeader(snap Snapshot) string {
	conn := lipgloss.NewStyle().Foreground(colorSuccess).Render("● connected")
	if !snap.Connected {
		conn = lipgloss.NewStyle().Foreground(colorError).Render("● unreachable")
	}
	header := fmt.Sprintf("appwatch │ %s │ %d polling tasks", snap.ServerURL, snap.PollingTasks)
	return headerStyle.Render(header) + " " + conn
}

func renderStatus(snap Snapshot) string {
	var b strings.Builder

	state := lipgloss.NewStyle().Foreground(colorMuted).Render("stopped")
	if snap.MonitoringActive {
		state = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("monitoring")
		if snap.CheckInterval > 0 {
			state += valueStyle.Render(fmt.Sprintf(" (every %ds)", snap.CheckInterval))
		}
	}

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("  %-12s", label)) + "  " + value + "\n")
	}
	row("State", state)
	row("Last check", valueOrDash(snap.LastCheckTime))
	row("Result", valueOrDash(truncate(snap.LastCheckStatus)))

	return b.String()
}

// renderControls draws the interval field and one button per command.
// Disabled buttons are grayed out and their keys do nothing.
func renderControls(c Controls, interval string) string {
	button := func(key, label string, enabled bool) string {
		text := fmt.Sprintf("%s %s", key, label)
		if enabled {
			return buttonStyle.Render(text)
		}
		return disabledButtonStyle.Render(text)
	}

	field := labelStyle.Render("  Interval ") + interval
	if !c.IntervalEditable {
		field = dimStyle.Render("  Interval " + interval)
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		button("s", "Start", c.StartEnabled), " ",
		button("x", "Stop", c.StopEnabled), " ",
		button("c", "Check now", c.CheckNowEnabled), " ",
		button("r", "Refresh", true), " ",
		button("l", "Clear log", true),
	)
	return field + "\n  " + buttons + "\n"
}

func renderStats(st StatsState) string {
	if !st.Loaded {
		return emptyStyle.Render("  (loading history...)") + "\n"
	}

	var b strings.Builder
	counter := func(label string, n int, color lipgloss.Color) string {
		return counterStyle.Render(fmt.Sprintf("%s %s", label,
			lipgloss.NewStyle().Foreground(color).Render(fmt.Sprint(n))))
	}
	b.WriteString("  ")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		counter("Total", st.Total, lipgloss.Color("252")), " ",
		counter("Successful", st.Successful, colorSuccess), " ",
		counter("Failed", st.Failed, colorError), " ",
		counter("Found", st.Found, colorFound),
	))
	b.WriteString("\n")

	if st.Empty {
		b.WriteString(emptyStyle.Render("  No checks yet. Start monitoring to see results here."))
		b.WriteString("\n")
		return b.String()
	}

	for _, r := range st.Rows {
		badge := lipgloss.NewStyle().
			Foreground(outcomeColor(r.Outcome)).
			Bold(true).
			Render(fmt.Sprintf("%-11s", r.Badge))
		b.WriteString(fmt.Sprintf("  %s  %s  %s\n",
			timeStyle.Render(r.Time), badge, truncate(r.Label)))
	}
	return b.String()
}

func renderCaptcha(c CaptchaState) string {
	if !c.Visible {
		return ""
	}

	var b strings.Builder
	title := "🔐 Captcha"
	if c.Entering {
		title += " (new)"
	}
	b.WriteString(sectionStyle.Render(title))
	b.WriteString("\n")

	image := "  image: " + describeImage(c.Image)
	switch c.Fade {
	case "out":
		image = dimStyle.Render(image)
	case "in":
		image = valueStyle.Faint(true).Render(image)
	default:
		image = valueStyle.Render(image)
	}
	b.WriteString(image)
	b.WriteString("\n")

	text := captchaTextStyle.Render(c.Text)
	if c.Pulsing {
		text = pulseStyle.Render(c.Text)
	}
	b.WriteString(labelStyle.Render("  solved as ") + text + "\n")
	return b.String()
}

// describeImage summarizes a data URL, since the terminal cannot show it.
func describeImage(src string) string {
	if src == "" {
		return "-"
	}
	rest, ok := strings.CutPrefix(src, "data:")
	if !ok {
		return truncate(src)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "inline data"
	}
	mime, _, _ := strings.Cut(meta, ";")
	size := len(payload)
	if strings.HasSuffix(meta, ";base64") {
		size = len(strings.TrimRight(payload, "=")) * 3 / 4
	}
	return fmt.Sprintf("%s, %s", mime, formatBytes(size))
}

func formatBytes(n int) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	return fmt.Sprintf("%.1f KB", float64(n)/1024)
}

func renderLog(lines []LogLine) string {
	if len(lines) == 0 {
		return emptyStyle.Render("  (log is empty)")
	}

	var b strings.Builder
	for _, l := range lines {
		style := lipgloss.NewStyle().Foreground(levelColor(l.Level))
		origin := " "
		if l.Remote {
			origin = dimStyle.Render("⇣")
		}
		b.WriteString(fmt.Sprintf("  %s %s %s %s\n",
			timeStyle.Render(l.Time), origin,
			style.Render(levelIcon(l.Level)), style.Render(truncate(l.Message))))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderToast(t *ToastState) string {
	if t == nil {
		return ""
	}
	return toastStyle.Background(levelColor(t.Severity)).Render(t.Text)
}

func valueOrDash(s string) string {
	if s == "" {
		return valueStyle.Render("-")
	}
	return valueStyle.Render(s)
}

func truncate(s string) string {
	if runewidth.StringWidth(s) > maxMessageWidth {
		return runewidth.Truncate(s, maxMessageWidth-3, "...")
	}
	return s
}
