// Package toast implements ephemeral, auto-dismissing user notifications.
// Only one toast is visible at a time; a new one replaces the current one.
package toast

import "time"

type Severity int

const (
	Info Severity = iota
	Success
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

type Toast struct {
	Seq      uint64
	Text     string
	Severity Severity
	Expires  time.Time
}

// Notifier is not safe for concurrent use.
type Notifier struct {
	duration time.Duration
	current  Toast
	seq      uint64
}

func NewNotifier(duration time.Duration) *Notifier {
	return &Notifier{duration: duration}
}

// Show replaces the visible toast.
func (n *Notifier) Show(now time.Time, text string, sev Severity) Toast {
	n.seq++
	n.current = Toast{
		Seq:      n.seq,
		Text:     text,
		Severity: sev,
		Expires:  now.Add(n.duration),
	}
	return n.current
}

// Active returns the visible toast, if it has not expired at now.
func (n *Notifier) Active(now time.Time) (Toast, bool) {
	return n.current.ActiveAt(now)
}

// Last returns the most recent toast whether or not it is still visible.
func (n *Notifier) Last() Toast {
	return n.current
}

// Shown is the number of toasts shown so far.
func (n *Notifier) Shown() uint64 {
	return n.seq
}

// ActiveAt reports whether t is still on screen at now.
func (t Toast) ActiveAt(now time.Time) (Toast, bool) {
	if t.Seq == 0 || !now.Before(t.Expires) {
		return Toast{}, false
	}
	return t, true
}
