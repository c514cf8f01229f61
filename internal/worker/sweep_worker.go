package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/tasktracker/internal/domain"
	"github.com/yourorg/tasktracker/internal/observability/metrics"
)

// SweepWorker periodically scans the task collection and refreshes the
// status and overdue gauges.
type SweepWorker struct {
	tasks    domain.TaskRepository
	logger   *slog.Logger
	interval time.Duration
}

// NewSweepWorker creates a new sweep worker
func NewSweepWorker(tasks domain.TaskRepository, logger *slog.Logger, interval time.Duration) *SweepWorker {
	return &SweepWorker{
		tasks:    tasks,
		logger:   logger,
		interval: interval,
	}
}

// Start begins the sweep loop. It runs until the context is cancelled.
func (w *SweepWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("sweep worker started", slog.Duration("interval", w.interval))

	// Publish an initial snapshot so gauges are populated before the
	// first tick.
	w.sweep()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sweep worker stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *SweepWorker) sweep() {
	all := w.tasks.All()

	counts := map[domain.Status]int{
		domain.StatusTodo:       0,
		domain.StatusInProgress: 0,
		domain.StatusCompleted:  0,
	}
	today := domain.Today()
	overdue := 0
	for _, t := range all {
		counts[t.Status]++
		if t.Overdue(today) {
			overdue++
		}
	}

	for status, n := range counts {
		metrics.SetTasksByStatus(string(status), n)
	}
	metrics.SetTasksOverdue(overdue)

	w.logger.Debug("task sweep complete",
		slog.Int("total", len(all)),
		slog.Int("todo", counts[domain.StatusTodo]),
		slog.Int("in_progress", counts[domain.StatusInProgress]),
		slog.Int("completed", counts[domain.StatusCompleted]),
		slog.Int("overdue", overdue),
	)
}
