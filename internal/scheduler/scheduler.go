// Package scheduler owns the dashboard's periodic polling tasks.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Kind int

const (
	KindStatus Kind = iota
	KindHistory
	KindLogs
	numKinds
)

func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindHistory:
		return "history"
	case KindLogs:
		return "logs"
	default:
		return "unknown"
	}
}

// Task is one periodic job. Run is invoked in its own goroutine on every
// tick, so a slow run never delays the next tick.
type Task struct {
	Interval time.Duration
	Run      func(ctx context.Context)
}

// Handle is a scheduled task's ticker loop.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// State holds one optional handle per task. A nil handle means "not
// scheduled".
type State struct {
	Status  *Handle
	History *Handle
	Logs    *Handle
}

func (s *State) slot(k Kind) **Handle {
	switch k {
	case KindStatus:
		return &s.Status
	case KindHistory:
		return &s.History
	default:
		return &s.Logs
	}
}

type Scheduler struct {
	tasks  [numKinds]Task
	logger *slog.Logger

	mu    sync.Mutex
	state State
}

func New(status, history, logs Task, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		tasks:  [numKinds]Task{status, history, logs},
		logger: logger,
	}
}

// Start schedules every task whose handle is empty. Calling it while tasks
// are running is a no-op for those tasks. Each newly scheduled task fires
// once immediately. Runs receive ctx, not the ticker's context, so StopAll
// leaves in-flight runs alone.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := Kind(0); k < numKinds; k++ {
		slot := s.state.slot(k)
		if *slot != nil {
			continue
		}
		*slot = s.launch(ctx, k)
		s.logger.Debug("polling task scheduled", "task", k, "interval", s.tasks[k].Interval)
	}
}

func (s *Scheduler) launch(ctx context.Context, k Kind) *Handle {
	task := s.tasks[k]
	loopCtx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)

		ticker := time.NewTicker(task.Interval)
		defer ticker.Stop()

		go task.Run(ctx)
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				go task.Run(ctx)
			}
		}
	}()
	return h
}

// StopAll cancels every scheduled task, waits for the ticker loops to exit
// and clears the handles.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := Kind(0); k < numKinds; k++ {
		slot := s.state.slot(k)
		if *slot == nil {
			continue
		}
		(*slot).cancel()
		<-(*slot).done
		*slot = nil
		s.logger.Debug("polling task stopped", "task", k)
	}
}

// Running reports how many tasks currently hold a handle.
func (s *Scheduler) Running() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k := Kind(0); k < numKinds; k++ {
		if *s.state.slot(k) != nil {
			n++
		}
	}
	return n
}

// Scheduled reports whether task k holds a handle.
func (s *Scheduler) Scheduled(k Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.state.slot(k) != nil
}
