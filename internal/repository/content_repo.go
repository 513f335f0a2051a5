package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OmeoneChain/omeonechain-sub009/internal/apperr"
	"github.com/OmeoneChain/omeonechain-sub009/internal/model"
)

// searchCorpusCap bounds the fetch-then-filter corpus for discovery
// queries. Viewer-relative trust filtering cannot run in SQL, so the
// matching set is fetched up to this cap and filtered in the service.
const searchCorpusCap = 1000

type ContentRepo struct {
	pool *pgxpool.Pool
}

func NewContentRepo(pool *pgxpool.Pool) *ContentRepo {
	return &ContentRepo{pool: pool}
}

const itemColumns = `item_id, author_id, title, body, tags, likes, saves, comments, reshares, created_at, last_updated`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE/ILIKE metacharacters so user text always
// matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanItem(row interface{ Scan(...any) error }) (model.ContentItem, error) {
	var it model.ContentItem
	err := row.Scan(
		&it.ItemID, &it.AuthorID, &it.Title, &it.Body, &it.Tags,
		&it.Likes, &it.Saves, &it.Comments, &it.Reshares,
		&it.CreatedAt, &it.LastUpdated,
	)
	return it, err
}

// FindByItemID returns a single content item by exact id.
func (r *ContentRepo) FindByItemID(ctx context.Context, itemID string) (*model.ContentItem, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE item_id = $1`, itemID)

	it, err := scanItem(row)
	if err != nil {
		return nil, wrapLookupErr(err, "item "+itemID)
	}
	return &it, nil
}

// CandidatesSince returns the trending candidate pool: items created
// after the window start, newest first, capped. Older items never
// trend regardless of engagement, so they are excluded here.
func (r *ContentRepo) CandidatesSince(ctx context.Context, windowStart time.Time, limit int) ([]model.ContentItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE created_at > $1
		ORDER BY created_at DESC
		LIMIT $2`, windowStart, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: candidate pool: %v", apperr.ErrTransientStore, err)
	}
	defer rows.Close()

	var items []model.ContentItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan candidate: %v", apperr.ErrTransientStore, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: candidate pool: %v", apperr.ErrTransientStore, err)
	}
	return items, nil
}

// SearchCorpus applies the index-friendly filters (text, author) and
// returns matches in recency order, capped. Tag containment, the
// viewer-relative trust filter, and pagination are applied by the
// discovery service on top of this set.
func (r *ContentRepo) SearchCorpus(ctx context.Context, f model.SearchFilters) ([]model.ContentItem, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Text != "" {
		p := arg("%" + escapeLike(f.Text) + "%")
		conds = append(conds, fmt.Sprintf("(title ILIKE %s OR body ILIKE %s)", p, p))
	}
	if f.AuthorID != "" {
		conds = append(conds, "author_id = "+arg(f.AuthorID))
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", searchCorpusCap)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: search corpus: %v", apperr.ErrTransientStore, err)
	}
	defer rows.Close()

	var items []model.ContentItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan search row: %v", apperr.ErrTransientStore, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: search corpus: %v", apperr.ErrTransientStore, err)
	}
	return items, nil
}

// GetStats returns aggregate platform statistics.
func (r *ContentRepo) GetStats(ctx context.Context) (*model.StatsResponse, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM items)                                   AS total_items,
			(SELECT COUNT(*) FROM requests)                                AS total_requests,
			(SELECT COUNT(*) FROM engagements)                             AS total_engagements,
			(SELECT COUNT(DISTINCT viewer_id) FROM engagements)            AS total_viewers,
			(SELECT COUNT(DISTINCT viewer_id) FROM engagements
			 WHERE created_at > NOW() - INTERVAL '24 hours')               AS active_viewers_24h`

	var stats model.StatsResponse
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalItems, &stats.TotalRequests, &stats.TotalEngagements,
		&stats.TotalViewers, &stats.ActiveViewers24h,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: stats: %v", apperr.ErrTransientStore, err)
	}

	tagQuery := `
		SELECT tag, COUNT(*) AS total
		FROM items, UNNEST(tags) AS tag
		GROUP BY tag
		ORDER BY total DESC
		LIMIT 10`

	rows, err := r.pool.Query(ctx, tagQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: stats tags: %v", apperr.ErrTransientStore, err)
	}
	defer rows.Close()

	stats.TopTags = make(map[string]int)
	for rows.Next() {
		var tag string
		var count int
		if err := rows.Scan(&tag, &count); err != nil {
			return nil, fmt.Errorf("%w: scan tag: %v", apperr.ErrTransientStore, err)
		}
		stats.TopTags[tag] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: stats tags: %v", apperr.ErrTransientStore, err)
	}

	return &stats, nil
}
