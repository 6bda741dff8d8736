package tui

import "time"

type Snapshot struct {
	Timestamp        time.Time
	ServerURL        string
	Connected        bool
	MonitoringActive bool
	LastCheckTime    string
	LastCheckStatus  string
	CheckInterval    int
	Controls         Controls
	Stats            StatsState
	Log              []LogLine // newest first
	Toast            *ToastState
	Captcha          CaptchaState
	PollingTasks     int
}

type Controls struct {
	StartEnabled     bool
	StopEnabled      bool
	IntervalEditable bool
	CheckNowEnabled  bool
}

type StatsState struct {
	Loaded     bool
	Empty      bool
	Total      int
	Successful int
	Failed     int
	Found      int
	Rows       []HistoryRow
}

type HistoryRow struct {
	Time    string
	Outcome string // found|error|check
	Badge   string
	Label   string
}

type LogLine struct {
	Time    string
	Level   string // info|success|warning|error
	Message string
	Remote  bool
}

type ToastState struct {
	Text     string
	Severity string // info|success|warning|error
}

type CaptchaState struct {
	Visible  bool
	Entering bool
	Image    string
	Fade     string // ""|out|in
	Text     string
	Pulsing  bool
}
