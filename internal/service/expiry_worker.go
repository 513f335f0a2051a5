package service

import (
	"context"
	"log"
	"time"

	"github.com/OmeoneChain/omeonechain-sub009/internal/repository"
)

// ExpiryWorker is a periodic background job that closes discovery
// requests past their deadline and expires winnerless pending bounties.
type ExpiryWorker struct {
	repo     *repository.RequestRepo
	interval time.Duration
	stopCh   chan struct{}
}

// NewExpiryWorker creates a worker that ticks every interval.
func NewExpiryWorker(repo *repository.RequestRepo, interval time.Duration) *ExpiryWorker {
	return &ExpiryWorker{
		repo:     repo,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic expiry loop. It runs one tick immediately,
// then every interval.
func (w *ExpiryWorker) Start(ctx context.Context) {
	log.Printf("expiry-worker: starting (interval=%s)", w.interval)

	// Run once immediately on startup
	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			log.Println("expiry-worker: stopping (context cancelled)")
			return
		case <-w.stopCh:
			log.Println("expiry-worker: stopping (stop signal)")
			return
		}
	}
}

// Stop signals the worker to stop.
func (w *ExpiryWorker) Stop() {
	close(w.stopCh)
}

// tick runs one cycle: expire due bounties, close due requests.
func (w *ExpiryWorker) tick(ctx context.Context) {
	start := time.Now()

	closed, expired, err := w.repo.ExpireDue(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("expiry-worker: error: %v", err)
		return
	}

	if closed > 0 || expired > 0 {
		elapsed := time.Since(start)
		log.Printf("expiry-worker: tick complete, %d requests closed, %d bounties expired (%s)",
			closed, expired, elapsed.Round(time.Millisecond))
	}
}
