package stats

import "github.com/marcin-skalski/appwatch/internal/api"

const DefaultRows = 10

type Outcome int

const (
	OutcomeCheck Outcome = iota
	OutcomeError
	OutcomeFound
)

func (o Outcome) Badge() string {
	switch o {
	case OutcomeFound:
		return "Appointment"
	case OutcomeError:
		return "Error"
	default:
		return "Check"
	}
}

type Row struct {
	Timestamp api.Timestamp
	Outcome   Outcome
	Label     string
}

// Summary is recomputed in full from every history snapshot.
type Summary struct {
	Total      int
	Successful int
	Failed     int
	Found      int
	Rows       []Row
	Empty      bool
}

// Aggregate derives the counters and at most maxRows summary rows from a
// newest-first history snapshot. The order of history is preserved.
func Aggregate(history []api.HistoryEntry, maxRows int) Summary {
	if maxRows <= 0 {
		maxRows = DefaultRows
	}

	s := Summary{Total: len(history), Empty: len(history) == 0}
	for _, h := range history {
		if h.Status == "success" {
			s.Successful++
		}
		if h.HasError() {
			s.Failed++
		}
		if h.AppointmentFound {
			s.Found++
		}
	}

	n := min(maxRows, len(history))
	s.Rows = make([]Row, 0, n)
	for _, h := range history[:n] {
		outcome := classify(h)
		s.Rows = append(s.Rows, Row{
			Timestamp: h.Timestamp,
			Outcome:   outcome,
			Label:     label(h, outcome),
		})
	}
	return s
}

// classify picks one outcome per entry: a found appointment outranks an
// error, which outranks a plain successful check.
func classify(h api.HistoryEntry) Outcome {
	switch {
	case h.AppointmentFound:
		return OutcomeFound
	case h.HasError():
		return OutcomeError
	default:
		return OutcomeCheck
	}
}

func label(h api.HistoryEntry, o Outcome) string {
	switch o {
	case OutcomeFound:
		return "Appointment found!"
	case OutcomeError:
		return "Error: " + *h.Error
	default:
		return "Successful"
	}
}
