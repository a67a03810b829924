package worker

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Worker is a long-running task that returns once ctx is done.
type Worker interface {
	Start(ctx context.Context) error
}

// Manager starts and supervises a set of workers.
type Manager struct {
	workers []Worker
}

func NewManager(ws ...Worker) *Manager {
	return &Manager{workers: ws}
}

// Start runs every worker until ctx is cancelled or one of them fails, in
// which case the others are stopped and the first error is returned.
func (m *Manager) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, w := range m.workers {
		w := w
		g.Go(func() error {
			if err := w.Start(ctx); err != nil {
				slog.Error("worker: stopped with error", "worker", fmt.Sprintf("%T", w), "error", err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
