package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OmeoneChain/omeonechain-sub009/internal/apperr"
)

// GraphRepo reads precomputed social-distance aggregates. Graph
// traversal happens in the external social-graph pipeline; this engine
// only consumes the per-(viewer, author) endorsement counts it writes.
type GraphRepo struct {
	pool *pgxpool.Pool
}

func NewGraphRepo(pool *pgxpool.Pool) *GraphRepo {
	return &GraphRepo{pool: pool}
}

// Distance returns how many of the viewer's direct connections (1 hop)
// and connections-of-connections (2 hops) endorse the author. An
// unknown pair is zero endorsements, not an error.
func (r *GraphRepo) Distance(ctx context.Context, viewerID, authorID string) (direct, network int, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT direct_count, network_count
		FROM endorsements
		WHERE viewer_id = $1 AND author_id = $2`,
		viewerID, authorID).Scan(&direct, &network)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("%w: social distance: %v", apperr.ErrTransientStore, err)
	}
	return direct, network, nil
}
