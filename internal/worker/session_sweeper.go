package worker

import (
	"context"
	"time"

	"todoSaas/internal/logger"

	"go.uber.org/zap"
)

type SessionStore interface {
	SweepExpired(now time.Time) int
}

// SessionSweeper периодически выметает истёкшие сессии из памяти
type SessionSweeper struct {
	sessions SessionStore
	interval time.Duration
}

func NewSessionSweeper(sessions SessionStore, interval time.Duration) *SessionSweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SessionSweeper{
		sessions: sessions,
		interval: interval,
	}
}

func (w *SessionSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Sweep()
		case <-ctx.Done():
			logger.Info("Worker: Очистка сессий останавливается")
			return
		}
	}
}

func (w *SessionSweeper) Sweep() {
	start := time.Now()

	removed := w.sessions.SweepExpired(start)
	if removed > 0 {
		logger.Info(
			"Worker: Истёкшие сессии удалены",
			zap.Int("removed", removed),
			zap.Duration("ms", time.Since(start)),
		)
	}
}
