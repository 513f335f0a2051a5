package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OmeoneChain/omeonechain-sub009/internal/repository"
)

// LedgerWorker listens for PostgreSQL NOTIFY on the 'engagement_changes'
// channel and batches counter reconciliations. If 50 toggles hit item X
// inside the batch window, the counters are recounted once. Recounting
// rebuilds likes/saves from the membership rows, healing any drift a
// crashed toggle left behind.
type LedgerWorker struct {
	pool    *pgxpool.Pool
	repo    *repository.EngagementRepo
	cache   *CacheService
	batchMs time.Duration

	mu      sync.Mutex
	pending map[string]struct{} // item IDs waiting for reconciliation
}

// NewLedgerWorker creates a counter reconciliation worker.
func NewLedgerWorker(pool *pgxpool.Pool, repo *repository.EngagementRepo, cache *CacheService) *LedgerWorker {
	return &LedgerWorker{
		pool:    pool,
		repo:    repo,
		cache:   cache,
		batchMs: 5 * time.Second,
		pending: make(map[string]struct{}),
	}
}

// Start begins listening for engagement_changes notifications and
// processing batches.
func (w *LedgerWorker) Start(ctx context.Context) {
	log.Printf("ledger-worker: starting (batch window=%s)", w.batchMs)

	for {
		if err := w.listenLoop(ctx); err != nil {
			if ctx.Err() != nil {
				log.Println("ledger-worker: stopping (context cancelled)")
				return
			}
			log.Printf("ledger-worker: listen error, reconnecting in 5s: %v", err)
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				log.Println("ledger-worker: stopping (context cancelled)")
				return
			}
		}
	}
}

// listenLoop acquires a dedicated connection, LISTENs on
// engagement_changes, and collects notified item IDs for the flusher.
func (w *LedgerWorker) listenLoop(ctx context.Context) error {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, "LISTEN engagement_changes")
	if err != nil {
		return err
	}
	log.Println("ledger-worker: listening on engagement_changes")

	flushCtx, flushCancel := context.WithCancel(ctx)
	defer flushCancel()
	go w.flushLoop(flushCtx)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		itemID := notification.Payload
		if itemID == "" {
			continue
		}

		w.mu.Lock()
		w.pending[itemID] = struct{}{}
		w.mu.Unlock()
	}
}

// flushLoop periodically drains the pending set and reconciles counters.
func (w *LedgerWorker) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(w.batchMs)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.flush(ctx)
		case <-ctx.Done():
			// Final flush before exit
			w.flush(context.Background())
			return
		}
	}
}

// flush drains the pending set and recounts each item's engagement
// counters from its membership rows.
func (w *LedgerWorker) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}

	// Swap out the pending map
	batch := w.pending
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	reconciled := 0
	for itemID := range batch {
		if err := w.repo.Recount(ctx, itemID); err != nil {
			log.Printf("ledger-worker: recount error for %s: %v", itemID, err)
			continue
		}

		if w.cache != nil {
			if err := w.cache.InvalidateItem(ctx, itemID); err != nil {
				log.Printf("ledger-worker: cache invalidate error for %s: %v", itemID, err)
			}
		}

		reconciled++
	}

	if reconciled > 0 {
		log.Printf("ledger-worker: batch complete, %d items reconciled (from %d notifications)",
			reconciled, len(batch))
	}
}
