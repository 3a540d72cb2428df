package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bookstore_api/internal/service"
)

// SessionSweeper periodically drops idle checkout sessions.
type SessionSweeper struct {
	store    *service.SessionStore
	interval time.Duration
	maxIdle  time.Duration
}

// NewSessionSweeper constructs a SessionSweeper.
func NewSessionSweeper(store *service.SessionStore, interval, maxIdle time.Duration) *SessionSweeper {
	return &SessionSweeper{
		store:    store,
		interval: interval,
		maxIdle:  maxIdle,
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (w *SessionSweeper) Start(ctx context.Context) {
	if w.interval <= 0 {
		log.Warn().Msg("Session sweeper disabled: non-positive interval")
		return
	}
	log.Info().Dur("interval", w.interval).Dur("max_idle", w.maxIdle).Msg("Starting session sweeper")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run()
		case <-ctx.Done():
			log.Info().Msg("Session sweeper stopped")
			return
		}
	}
}

func (w *SessionSweeper) run() {
	if removed := w.store.Sweep(time.Now(), w.maxIdle); removed > 0 {
		log.Info().Int("removed", removed).Int("open", w.store.Len()).Msg("Idle checkout sessions removed")
	}
}
