package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OmeoneChain/omeonechain-sub009/internal/apperr"
	"github.com/OmeoneChain/omeonechain-sub009/internal/model"
)

type RequestRepo struct {
	pool *pgxpool.Pool
}

func NewRequestRepo(pool *pgxpool.Pool) *RequestRepo {
	return &RequestRepo{pool: pool}
}

// --- Pure transition rules ---
// Factored out of the SQL paths so lifecycle legality is testable
// without a database.

// CanRespond reports whether a request in the given status accepts
// new responses.
func CanRespond(status model.RequestStatus) error {
	if status == model.RequestClosed {
		return fmt.Errorf("%w: request is closed", apperr.ErrConflict)
	}
	return nil
}

// CanClose reports whether a request in the given status can be closed.
func CanClose(status model.RequestStatus) error {
	if status == model.RequestClosed {
		return fmt.Errorf("%w: request already closed", apperr.ErrConflict)
	}
	return nil
}

// CanAward reports whether a bounty can be awarded. Awarding requires
// the request to have left the open state and the bounty to still be
// pending; awarded, refunded and expired are terminal.
func CanAward(status model.RequestStatus, bounty model.BountyStatus) error {
	switch bounty {
	case model.BountyPending:
	case model.BountyNone:
		return fmt.Errorf("%w: request has no bounty", apperr.ErrConflict)
	default:
		return fmt.Errorf("%w: bounty already %s", apperr.ErrConflict, bounty)
	}
	if status == model.RequestOpen {
		return fmt.Errorf("%w: cannot award bounty while request is open", apperr.ErrConflict)
	}
	return nil
}

// CloseBountyOutcome returns the bounty state after a winnerless close:
// a pending bounty is refunded, anything else is left alone.
func CloseBountyOutcome(bounty model.BountyStatus) model.BountyStatus {
	if bounty == model.BountyPending {
		return model.BountyRefunded
	}
	return bounty
}

// --- Persistence ---

const requestColumns = `request_id, requester_id, title, body, status, bounty_amount,
	bounty_status, response_count, winner_id, expires_at, created_at, last_updated`

func scanRequest(row interface{ Scan(...any) error }) (model.DiscoveryRequest, error) {
	var dr model.DiscoveryRequest
	err := row.Scan(
		&dr.RequestID, &dr.RequesterID, &dr.Title, &dr.Body, &dr.Status,
		&dr.BountyAmount, &dr.BountyStatus, &dr.ResponseCount,
		&dr.WinnerID, &dr.ExpiresAt, &dr.CreatedAt, &dr.LastUpdated,
	)
	return dr, err
}

// Create inserts a new open request. The bounty status is pending when
// a stake is attached, none otherwise.
func (r *RequestRepo) Create(ctx context.Context, dr *model.DiscoveryRequest) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO requests (request_id, requester_id, title, body, status,
			bounty_amount, bounty_status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		dr.RequestID, dr.RequesterID, dr.Title, dr.Body, dr.Status,
		dr.BountyAmount, dr.BountyStatus, dr.ExpiresAt)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", apperr.ErrTransientStore, err)
	}
	return nil
}

// FindByRequestID returns a single request by id.
func (r *RequestRepo) FindByRequestID(ctx context.Context, requestID string) (*model.DiscoveryRequest, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+requestColumns+`
		FROM requests
		WHERE request_id = $1`, requestID)

	dr, err := scanRequest(row)
	if err != nil {
		return nil, wrapLookupErr(err, "request "+requestID)
	}
	return &dr, nil
}

// AddResponse records an answer and moves an open request to answered.
// The row lock serializes concurrent responses so the open→answered
// transition fires exactly once.
func (r *RequestRepo) AddResponse(ctx context.Context, requestID, responderID string, itemID *string, body string) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: begin respond: %v", apperr.ErrTransientStore, err)
	}
	defer tx.Rollback(ctx)

	var status model.RequestStatus
	err = tx.QueryRow(ctx, `
		SELECT status FROM requests WHERE request_id = $1 FOR UPDATE`,
		requestID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: request %s", apperr.ErrNotFound, requestID)
		}
		return 0, fmt.Errorf("%w: lock request: %v", apperr.ErrTransientStore, err)
	}
	if err := CanRespond(status); err != nil {
		return 0, err
	}

	var responseID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO request_responses (request_id, responder_id, item_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING response_id`,
		requestID, responderID, itemID, body).Scan(&responseID)
	if err != nil {
		return 0, fmt.Errorf("%w: insert response: %v", apperr.ErrTransientStore, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE requests
		SET response_count = response_count + 1,
		    status = CASE WHEN status = 'open' THEN 'answered' ELSE status END,
		    last_updated = NOW()
		WHERE request_id = $1`, requestID)
	if err != nil {
		return 0, fmt.Errorf("%w: update request: %v", apperr.ErrTransientStore, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%w: commit respond: %v", apperr.ErrTransientStore, err)
	}
	return responseID, nil
}

// Close moves a request to closed. A still-pending bounty is refunded:
// the requester walked away without selecting a winner.
func (r *RequestRepo) Close(ctx context.Context, requestID string) (*model.DiscoveryRequest, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin close: %v", apperr.ErrTransientStore, err)
	}
	defer tx.Rollback(ctx)

	var status model.RequestStatus
	var bounty model.BountyStatus
	err = tx.QueryRow(ctx, `
		SELECT status, bounty_status FROM requests WHERE request_id = $1 FOR UPDATE`,
		requestID).Scan(&status, &bounty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: request %s", apperr.ErrNotFound, requestID)
		}
		return nil, fmt.Errorf("%w: lock request: %v", apperr.ErrTransientStore, err)
	}
	if err := CanClose(status); err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		UPDATE requests
		SET status = 'closed', bounty_status = $2, last_updated = NOW()
		WHERE request_id = $1
		RETURNING `+requestColumns,
		requestID, CloseBountyOutcome(bounty))
	dr, err := scanRequest(row)
	if err != nil {
		return nil, fmt.Errorf("%w: close request: %v", apperr.ErrTransientStore, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit close: %v", apperr.ErrTransientStore, err)
	}
	return &dr, nil
}

// Award marks the bounty as awarded to the responder behind the given
// response. Legal only once the request has left the open state and
// while the bounty is still pending.
func (r *RequestRepo) Award(ctx context.Context, requestID string, responseID int64) (*model.DiscoveryRequest, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin award: %v", apperr.ErrTransientStore, err)
	}
	defer tx.Rollback(ctx)

	var status model.RequestStatus
	var bounty model.BountyStatus
	err = tx.QueryRow(ctx, `
		SELECT status, bounty_status FROM requests WHERE request_id = $1 FOR UPDATE`,
		requestID).Scan(&status, &bounty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: request %s", apperr.ErrNotFound, requestID)
		}
		return nil, fmt.Errorf("%w: lock request: %v", apperr.ErrTransientStore, err)
	}
	if err := CanAward(status, bounty); err != nil {
		return nil, err
	}

	var winnerID string
	err = tx.QueryRow(ctx, `
		SELECT responder_id FROM request_responses
		WHERE response_id = $1 AND request_id = $2`,
		responseID, requestID).Scan(&winnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: response %d on request %s", apperr.ErrNotFound, responseID, requestID)
		}
		return nil, fmt.Errorf("%w: find response: %v", apperr.ErrTransientStore, err)
	}

	row := tx.QueryRow(ctx, `
		UPDATE requests
		SET bounty_status = 'awarded', winner_id = $2, last_updated = NOW()
		WHERE request_id = $1
		RETURNING `+requestColumns,
		requestID, winnerID)
	dr, err := scanRequest(row)
	if err != nil {
		return nil, fmt.Errorf("%w: award bounty: %v", apperr.ErrTransientStore, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit award: %v", apperr.ErrTransientStore, err)
	}
	return &dr, nil
}

// ExpireDue is the worker path: expires pending bounties whose deadline
// passed without a winner, then closes open requests past their
// deadline. Bounty expiry runs first so the close does not refund.
func (r *RequestRepo) ExpireDue(ctx context.Context, now time.Time) (closed, expired int, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: begin expire: %v", apperr.ErrTransientStore, err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE requests
		SET bounty_status = 'expired', last_updated = NOW()
		WHERE bounty_status = 'pending'
		  AND expires_at IS NOT NULL AND expires_at < $1`, now)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: expire bounties: %v", apperr.ErrTransientStore, err)
	}
	expired = int(tag.RowsAffected())

	tag, err = tx.Exec(ctx, `
		UPDATE requests
		SET status = 'closed', last_updated = NOW()
		WHERE status = 'open'
		  AND expires_at IS NOT NULL AND expires_at < $1`, now)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: close expired: %v", apperr.ErrTransientStore, err)
	}
	closed = int(tag.RowsAffected())

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("%w: commit expire: %v", apperr.ErrTransientStore, err)
	}
	return closed, expired, nil
}
