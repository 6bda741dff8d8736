package toast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToastExpiresAfterDuration(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	n := NewNotifier(3 * time.Second)

	_, ok := n.Active(now)
	require.False(t, ok)

	n.Show(now, "Monitoring started", Success)

	got, ok := n.Active(now.Add(2999 * time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, "Monitoring started", got.Text)
	assert.Equal(t, Success, got.Severity)

	_, ok = n.Active(now.Add(3 * time.Second))
	assert.False(t, ok)
	assert.Equal(t, "Monitoring started", n.Last().Text)
}

func TestNewToastReplacesCurrent(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	n := NewNotifier(3 * time.Second)

	n.Show(now, "first", Info)
	n.Show(now.Add(time.Second), "second", Error)

	got, ok := n.Active(now.Add(3500 * time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, "second", got.Text)
	assert.Equal(t, uint64(2), got.Seq)
	assert.Equal(t, uint64(2), n.Shown())
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", Info.String())
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "warning", Warning.String())
	assert.Equal(t, "error", Error.String())
}
