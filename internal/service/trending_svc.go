package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/OmeoneChain/omeonechain-sub009/internal/apperr"
	"github.com/OmeoneChain/omeonechain-sub009/internal/model"
)

const (
	// Engagement point weights per counter.
	ReshareWeight = 2.0
	LikeWeight    = 1.5
	SaveWeight    = 1.5
	CommentWeight = 1.0

	// Hours added to the decay divisor so a brand-new item does not
	// divide by near-zero.
	DecayFloorHours = 2.0
)

// TrendingCandidates is the subset of the content repository the
// trending service needs.
type TrendingCandidates interface {
	CandidatesSince(ctx context.Context, windowStart time.Time, limit int) ([]model.ContentItem, error)
}

// TrendingService ranks recent content by decayed engagement.
type TrendingService struct {
	repo       TrendingCandidates
	cache      *CacheService
	poolSize   int
	windowDays int
}

func NewTrendingService(repo TrendingCandidates, cache *CacheService, poolSize, windowDays int) *TrendingService {
	return &TrendingService{
		repo:       repo,
		cache:      cache,
		poolSize:   poolSize,
		windowDays: windowDays,
	}
}

// EngagementPoints is the weighted engagement sum used as the trending
// numerator:
//
//	points = reshares*2.0 + likes*1.5 + saves*1.5 + comments*1.0
func EngagementPoints(it model.ContentItem) float64 {
	return float64(it.Reshares)*ReshareWeight +
		float64(it.Likes)*LikeWeight +
		float64(it.Saves)*SaveWeight +
		float64(it.Comments)*CommentWeight
}

// TrendingScore divides engagement points by a square-root time decay.
// Negative ages (clock skew, future timestamps) clamp to zero.
//
//	score = points / sqrt(hours + 2)
func TrendingScore(points, hoursSincePosted float64) float64 {
	if hoursSincePosted < 0 {
		hoursSincePosted = 0
	}
	return points / math.Sqrt(hoursSincePosted+DecayFloorHours)
}

// Rank orders candidates by descending trending score, ties broken by
// most recent creation, and returns the top limit entries with their
// scores attached. Candidates created before windowStart are dropped,
// so the window holds even when the caller's pool is wider. An empty
// candidate pool yields an empty slice.
func Rank(candidates []model.ContentItem, windowStart, now time.Time, limit int) []model.ContentResponse {
	type scored struct {
		item  model.ContentItem
		score float64
	}

	ranked := make([]scored, 0, len(candidates))
	for _, it := range candidates {
		if it.CreatedAt.Before(windowStart) {
			continue
		}
		hours := now.Sub(it.CreatedAt).Hours()
		ranked = append(ranked, scored{
			item:  it,
			score: TrendingScore(EngagementPoints(it), hours),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].item.CreatedAt.After(ranked[j].item.CreatedAt)
	})

	if limit < len(ranked) {
		ranked = ranked[:limit]
	}

	out := make([]model.ContentResponse, 0, len(ranked))
	for _, r := range ranked {
		resp := contentResponse(r.item)
		score := r.score
		resp.TrendingScore = &score
		out = append(out, resp)
	}
	return out
}

func contentResponse(it model.ContentItem) model.ContentResponse {
	tags := it.Tags
	if tags == nil {
		tags = []string{}
	}
	return model.ContentResponse{
		ItemID:    it.ItemID,
		AuthorID:  it.AuthorID,
		Title:     it.Title,
		Tags:      tags,
		Likes:     it.Likes,
		Saves:     it.Saves,
		Comments:  it.Comments,
		Reshares:  it.Reshares,
		CreatedAt: it.CreatedAt,
	}
}

// GetTrending returns the trending feed. Results are cached per
// (time bucket, limit): ranking a bounded candidate pool is a pure
// read, so recomputing inside a bucket would be wasted work.
func (s *TrendingService) GetTrending(ctx context.Context, limit int) ([]model.ContentResponse, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", apperr.ErrValidation)
	}

	now := time.Now().UTC()
	bucket := now.Unix() / int64(TrendingCacheTTL.Seconds())

	if s.cache != nil {
		cached, err := s.cache.GetTrending(ctx, bucket, limit)
		if err != nil {
			log.Printf("cache: trending get error: %v", err)
		} else if cached != nil {
			var feed []model.ContentResponse
			if err := json.Unmarshal(cached, &feed); err == nil {
				return feed, nil
			}
		}
	}

	windowStart := now.AddDate(0, 0, -s.windowDays)
	candidates, err := s.repo.CandidatesSince(ctx, windowStart, s.poolSize)
	if err != nil {
		// Degrade to an empty feed; the handler surfaces the error.
		return []model.ContentResponse{}, err
	}

	feed := Rank(candidates, windowStart, now, limit)

	if s.cache != nil {
		if err := s.cache.SetTrending(ctx, bucket, limit, feed); err != nil {
			log.Printf("cache: trending set error: %v", err)
		}
	}

	return feed, nil
}
