// Package feed holds the bounded, newest-first log surface shared by
// locally generated action entries and entries merged from the server.
package feed

import (
	"strings"
	"time"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// ParseLevel maps a server level name onto one of the four categories.
// Unrecognized names are info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUCCESS":
		return LevelSuccess
	case "WARNING":
		return LevelWarning
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

type Source int

const (
	SourceLocal Source = iota
	SourceRemote
)

// Entry is immutable once inserted.
type Entry struct {
	Time    string
	Level   Level
	Message string
	Source  Source
}

// Text is the rendered form used for duplicate detection.
func (e Entry) Text() string {
	return e.Time + " " + e.Message
}

// TimeLayout is the clock format of rendered entry times.
const TimeLayout = "15:04:05"

// Feed is not safe for concurrent use. The controller loop is its only
// writer.
type Feed struct {
	entries   []Entry // newest first
	localCap  int
	mergedCap int
	merging   bool
}

func New(localCap, mergedCap int) *Feed {
	if localCap < 1 {
		localCap = 1
	}
	if mergedCap < localCap {
		mergedCap = localCap
	}
	return &Feed{localCap: localCap, mergedCap: mergedCap}
}

// Cap is the current maximum: the local cap until the first merge pass, the
// merged cap after.
func (f *Feed) Cap() int {
	if f.merging {
		return f.mergedCap
	}
	return f.localCap
}

func (f *Feed) Len() int {
	return len(f.entries)
}

// Entries returns a copy, newest first.
func (f *Feed) Entries() []Entry {
	return append([]Entry(nil), f.entries...)
}

// Head returns the newest entry.
func (f *Feed) Head() (Entry, bool) {
	if len(f.entries) == 0 {
		return Entry{}, false
	}
	return f.entries[0], true
}

// Push inserts a local entry stamped at now.
func (f *Feed) Push(now time.Time, level Level, message string) Entry {
	e := Entry{
		Time:    now.Format(TimeLayout),
		Level:   level,
		Message: message,
		Source:  SourceLocal,
	}
	f.prepend([]Entry{e})
	return e
}

// Merge folds one server batch, ordered newest-last, into the surface and
// returns the entries it inserted, newest first.
//
// The batch is walked newest to oldest and each candidate is compared only
// with the current head. A match means everything older is already shown, so
// the pass ends there. Duplicates further back than the head are not
// detected.
func (f *Feed) Merge(batch []Entry) []Entry {
	f.merging = true

	head, hasHead := f.Head()
	var fresh []Entry
	for i := len(batch) - 1; i >= 0; i-- {
		e := batch[i]
		e.Source = SourceRemote
		if hasHead && e.Text() == head.Text() {
			break
		}
		if n := len(fresh); n > 0 && fresh[n-1].Text() == e.Text() {
			continue
		}
		fresh = append(fresh, e)
	}

	f.prepend(fresh)
	return fresh
}

// Reset replaces the surface with a single local entry.
func (f *Feed) Reset(now time.Time, level Level, message string) Entry {
	f.entries = f.entries[:0]
	return f.Push(now, level, message)
}

func (f *Feed) prepend(newest []Entry) {
	if len(newest) > 0 {
		next := make([]Entry, 0, len(newest)+len(f.entries))
		next = append(next, newest...)
		next = append(next, f.entries...)
		f.entries = next
	}
	if limit := f.Cap(); len(f.entries) > limit {
		clear(f.entries[limit:])
		f.entries = f.entries[:limit]
	}
}
