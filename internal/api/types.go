package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// SessionStatus is one snapshot of GET /api/status.
type SessionStatus struct {
	MonitoringActive bool       `json:"monitoring_active"`
	LastCheckTime    *Timestamp `json:"last_check_time"`
	LastCheckStatus  string     `json:"last_check_status"`
	CheckInterval    int        `json:"check_interval"`
	CaptchaImage     *string    `json:"captcha_image"`
	CaptchaText      *string    `json:"captcha_text"`
}

// HistoryEntry is one past check. GET /api/history returns them newest-first.
type HistoryEntry struct {
	ID               int64     `json:"id,omitempty"`
	Timestamp        Timestamp `json:"timestamp"`
	Status           string    `json:"status"`
	Error            *string   `json:"error"`
	AppointmentFound bool      `json:"appointment_found"`
}

// HasError reports whether the entry carries a non-empty error.
func (e HistoryEntry) HasError() bool {
	return e.Error != nil && *e.Error != ""
}

// LogEntry is one server-side log line. The batch is ordered newest-last.
type LogEntry struct {
	Timestamp Timestamp `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

type recentLogs struct {
	Logs []LogEntry `json:"logs"`
}

type checkResult struct {
	Result string `json:"result"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Timestamp accepts epoch seconds (integer or fractional) or a timestamp
// string. Strings that match no known layout are kept in Raw.
type Timestamp struct {
	Time time.Time
	Raw  string
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC1123,
	time.RFC1123Z,
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode timestamp: %w", err)
		}
		*t = ParseTimestamp(s)
		return nil
	}

	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("decode timestamp %s: %w", data, err)
	}
	whole, frac := math.Modf(secs)
	*t = Timestamp{
		Time: time.Unix(int64(whole), int64(frac*float64(time.Second))),
		Raw:  string(data),
	}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		if t.Raw == "" {
			return []byte("null"), nil
		}
		return json.Marshal(t.Raw)
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// ParseTimestamp parses s against the layouts servers commonly emit.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Timestamp{Time: ts, Raw: s}
		}
	}
	return Timestamp{Raw: s}
}

// IsZero reports whether nothing was received.
func (t Timestamp) IsZero() bool {
	return t.Time.IsZero() && t.Raw == ""
}

// Format renders the time in local time with layout, falling back to the
// raw text when it could not be parsed.
func (t Timestamp) Format(layout string) string {
	if t.Time.IsZero() {
		return t.Raw
	}
	return t.Time.Local().Format(layout)
}
