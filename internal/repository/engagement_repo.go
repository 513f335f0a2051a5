package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OmeoneChain/omeonechain-sub009/internal/apperr"
	"github.com/OmeoneChain/omeonechain-sub009/internal/model"
)

// EngagementRepo is the engagement ledger: per-item counters plus the
// per-(item, viewer) membership rows that back them. All counter
// mutation goes through here.
type EngagementRepo struct {
	pool *pgxpool.Pool
}

func NewEngagementRepo(pool *pgxpool.Pool) *EngagementRepo {
	return &EngagementRepo{pool: pool}
}

// counterColumn maps an engagement kind to the denormalized counter it
// backs. Toggling a bookmark adjusts the saves counter.
func counterColumn(kind string) (string, error) {
	switch kind {
	case model.EngagementLike:
		return "likes", nil
	case model.EngagementBookmark:
		return "saves", nil
	default:
		return "", fmt.Errorf("%w: unknown engagement kind %q", apperr.ErrValidation, kind)
	}
}

// ToggleLike flips the viewer's like on an item and returns the
// authoritative counter and state.
func (r *EngagementRepo) ToggleLike(ctx context.Context, itemID, viewerID string) (count int, liked bool, err error) {
	return r.toggle(ctx, itemID, viewerID, model.EngagementLike)
}

// ToggleBookmark flips the viewer's bookmark on an item.
func (r *EngagementRepo) ToggleBookmark(ctx context.Context, itemID, viewerID string) (count int, bookmarked bool, err error) {
	return r.toggle(ctx, itemID, viewerID, model.EngagementBookmark)
}

// toggle is a strict toggle state machine executed in one transaction.
// The primary key on (item_id, viewer_id, kind) is the compare-and-swap:
// a duplicate client retry either inserts zero rows or deletes zero
// rows, and the counter only moves when the membership row actually
// changed. The counter decrement is floor-guarded so a double-fire race
// can never drive it negative.
func (r *EngagementRepo) toggle(ctx context.Context, itemID, viewerID, kind string) (count int, active bool, err error) {
	col, err := counterColumn(kind)
	if err != nil {
		return 0, false, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("%w: begin toggle: %v", apperr.ErrTransientStore, err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM items WHERE item_id = $1)`, itemID).Scan(&exists)
	if err != nil {
		return 0, false, fmt.Errorf("%w: check item: %v", apperr.ErrTransientStore, err)
	}
	if !exists {
		return 0, false, fmt.Errorf("%w: item %s", apperr.ErrNotFound, itemID)
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO engagements (item_id, viewer_id, kind)
		VALUES ($1, $2, $3)
		ON CONFLICT (item_id, viewer_id, kind) DO NOTHING`,
		itemID, viewerID, kind)
	if err != nil {
		return 0, false, fmt.Errorf("%w: insert engagement: %v", apperr.ErrTransientStore, err)
	}

	if tag.RowsAffected() == 1 {
		// Row inserted — the viewer was not engaged; increment.
		active = true
		_, err = tx.Exec(ctx, fmt.Sprintf(`
			UPDATE items SET %s = %s + 1, last_updated = NOW()
			WHERE item_id = $1`, col, col), itemID)
	} else {
		// Row already present — the viewer was engaged; remove and decrement.
		active = false
		del, delErr := tx.Exec(ctx, `
			DELETE FROM engagements
			WHERE item_id = $1 AND viewer_id = $2 AND kind = $3`,
			itemID, viewerID, kind)
		err = delErr
		if err == nil && del.RowsAffected() == 1 {
			_, err = tx.Exec(ctx, fmt.Sprintf(`
				UPDATE items SET %s = %s - 1, last_updated = NOW()
				WHERE item_id = $1 AND %s > 0`, col, col, col), itemID)
		}
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: apply toggle: %v", apperr.ErrTransientStore, err)
	}

	err = tx.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM items WHERE item_id = $1`, col), itemID).Scan(&count)
	if err != nil {
		return 0, false, fmt.Errorf("%w: read counter: %v", apperr.ErrTransientStore, err)
	}

	// Wake the ledger worker so the counter is reconciled against the
	// membership rows outside the request path.
	_, err = tx.Exec(ctx, `SELECT pg_notify('engagement_changes', $1)`, itemID)
	if err != nil {
		return 0, false, fmt.Errorf("%w: notify: %v", apperr.ErrTransientStore, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, false, fmt.Errorf("%w: commit toggle: %v", apperr.ErrTransientStore, err)
	}
	return count, active, nil
}

// GetState rebuilds a viewer's engagement state for one item from
// server truth. Used at session start to seed optimistic UI state.
func (r *EngagementRepo) GetState(ctx context.Context, itemID, viewerID string) (*model.EngagementState, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT kind FROM engagements
		WHERE item_id = $1 AND viewer_id = $2`,
		itemID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("%w: read state: %v", apperr.ErrTransientStore, err)
	}
	defer rows.Close()

	var state model.EngagementState
	for rows.Next() {
		var kind string
		if err := rows.Scan(&kind); err != nil {
			return nil, fmt.Errorf("%w: scan state: %v", apperr.ErrTransientStore, err)
		}
		switch kind {
		case model.EngagementLike:
			state.HasLiked = true
		case model.EngagementBookmark:
			state.HasBookmarked = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read state: %v", apperr.ErrTransientStore, err)
	}
	return &state, nil
}

// IncrementComments bumps the comment counter for an item. Comments
// themselves live outside this engine; only the counter is ledgered.
func (r *EngagementRepo) IncrementComments(ctx context.Context, itemID string) error {
	return r.increment(ctx, itemID, "comments")
}

// IncrementReshares bumps the reshare counter for an item.
func (r *EngagementRepo) IncrementReshares(ctx context.Context, itemID string) error {
	return r.increment(ctx, itemID, "reshares")
}

func (r *EngagementRepo) increment(ctx context.Context, itemID, col string) error {
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE items SET %s = %s + 1, last_updated = NOW()
		WHERE item_id = $1`, col, col), itemID)
	if err != nil {
		return fmt.Errorf("%w: increment %s: %v", apperr.ErrTransientStore, col, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: item %s", apperr.ErrNotFound, itemID)
	}
	return nil
}

// Recount recomputes the likes and saves counters for an item from its
// membership rows inside one transaction. Idempotent: recounting an
// already-correct item writes the same values. Used by the ledger
// worker to heal drift.
func (r *EngagementRepo) Recount(ctx context.Context, itemID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin recount: %v", apperr.ErrTransientStore, err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE items SET
			likes = (SELECT COUNT(*) FROM engagements
			         WHERE item_id = $1 AND kind = 'like'),
			saves = (SELECT COUNT(*) FROM engagements
			         WHERE item_id = $1 AND kind = 'bookmark'),
			last_updated = NOW()
		WHERE item_id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("%w: recount: %v", apperr.ErrTransientStore, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: item %s", apperr.ErrNotFound, itemID)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit recount: %v", apperr.ErrTransientStore, err)
	}
	return nil
}

// wrapLookupErr translates pgx sentinel errors at the repository boundary.
func wrapLookupErr(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", apperr.ErrNotFound, what)
	}
	return fmt.Errorf("%w: %s: %v", apperr.ErrTransientStore, what, err)
}
