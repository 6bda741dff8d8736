package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderStats(t *testing.T) {
	t.Run("loading", func(t *testing.T) {
		assert.Contains(t, renderStats(StatsState{}), "loading")
	})

	t.Run("empty history", func(t *testing.T) {
		out := renderStats(StatsState{Loaded: true, Empty: true})
		assert.Contains(t, out, "No checks yet")
		assert.Contains(t, out, "Total 0")
	})

	t.Run("rows", func(t *testing.T) {
		out := renderStats(StatsState{
			Loaded: true, Total: 2, Successful: 1, Failed: 1,
			Rows: []HistoryRow{
				{Time: "2024-05-01 10:00:00", Outcome: "error", Badge: "Error", Label: "Error: timeout"},
				{Time: "2024-05-01 09:00:00", Outcome: "check", Badge: "Check", Label: "Successful"},
			},
		})
		assert.NotContains(t, out, "No checks yet")
		assert.Contains(t, out, "Error: timeout")
		assert.Less(t, strings.Index(out, "Error: timeout"), strings.Index(out, "Successful\n"))
	})
}

func TestRenderCaptcha(t *testing.T) {
	assert.Empty(t, renderCaptcha(CaptchaState{Visible: false, Text: "1234"}))

	out := renderCaptcha(CaptchaState{
		Visible:  true,
		Entering: true,
		Image:    "data:image/png;base64,AAAAAAAA",
		Text:     "1234",
		Pulsing:  true,
	})
	assert.Contains(t, out, "(new)")
	assert.Contains(t, out, "image/png, 6 B")
	assert.Contains(t, out, "1234")
}

func TestDescribeImage(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"", "-"},
		{"data:image/png;base64,AAAA", "image/png, 3 B"},
		{"data:image/jpeg;base64,AAA=", "image/jpeg, 2 B"},
		{"data:image/svg+xml,<svg/>", "image/svg+xml, 6 B"},
		{"https://example.com/c.png", "https://example.com/c.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, describeImage(tt.src), tt.src)
	}
	assert.Equal(t, "image/png, 1.5 KB", describeImage("data:image/png;base64,"+strings.Repeat("A", 2048)))
}

func TestRenderLogTruncatesLongMessages(t *testing.T) {
	long := strings.Repeat("x", 300)
	out := renderLog([]LogLine{{Time: "10:00:00", Level: "error", Message: long}})
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, long)

	assert.Contains(t, renderLog(nil), "log is empty")
}

func TestRenderToast(t *testing.T) {
	assert.Empty(t, renderToast(nil))
	assert.Contains(t, renderToast(&ToastState{Text: "Logs cleared", Severity: "success"}), "Logs cleared")
}
