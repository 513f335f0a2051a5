package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"

	"github.com/OmeoneChain/omeonechain-sub009/internal/apperr"
	"github.com/OmeoneChain/omeonechain-sub009/internal/model"
)

const (
	// Endorsement weights. A direct friend vouching for an item counts
	// three times as much as a friend-of-friend.
	DirectWeight  = 0.75
	NetworkWeight = 0.25

	// Weighted endorsement points at which the score saturates at
	// MaxTrustScore. 12.0 points = 16 direct friends, 48 network
	// endorsements, or any mix in between; below that the score
	// scales linearly.
	SaturationPoints = 12.0

	MaxTrustScore = 10.0

	// Fixed level thresholds.
	HighlyTrustedMin = 8.0
	TrustedMin       = 6.0
	SomeTrustMin     = 4.0
)

// Social hops labels derived from which endorsement counts are non-zero.
const (
	HopsDirect  = "±1 hop"
	HopsNetwork = "±2 hops"
	HopsMixed   = "Mixed"
	HopsNone    = "Limited data"
)

// SocialGraph supplies precomputed social-distance endorsement counts.
// Implemented outside this engine; repository.GraphRepo is the
// Postgres-backed adapter.
type SocialGraph interface {
	Distance(ctx context.Context, viewerID, authorID string) (direct, network int, err error)
}

// ContentLookup is the subset of the content repository the trust
// service needs.
type ContentLookup interface {
	FindByItemID(ctx context.Context, itemID string) (*model.ContentItem, error)
}

// TrustService computes viewer-relative trust scores for content items.
type TrustService struct {
	graph   SocialGraph
	content ContentLookup
	cache   *CacheService
}

func NewTrustService(graph SocialGraph, content ContentLookup, cache *CacheService) *TrustService {
	return &TrustService{graph: graph, content: content, cache: cache}
}

// NewBreakdown builds a TrustBreakdown from raw endorsement counts,
// deriving the total and the social hops label.
func NewBreakdown(direct, network int) model.TrustBreakdown {
	return model.TrustBreakdown{
		DirectFriends:     direct,
		FriendsOfFriends:  network,
		TotalEndorsements: direct + network,
		SocialHops:        HopsLabel(direct, network),
	}
}

// HopsLabel derives the social hops label from which counts are non-zero.
func HopsLabel(direct, network int) string {
	switch {
	case direct > 0 && network > 0:
		return HopsMixed
	case direct > 0:
		return HopsDirect
	case network > 0:
		return HopsNetwork
	default:
		return HopsNone
	}
}

// ComputeTrust converts a breakdown into a 0-10 score and its level.
// Pure: the same breakdown always yields the same score, so results
// are cacheable per (item, viewer) pair until the endorsement set
// changes.
//
//	raw = direct*0.75 + network*0.25
//	score = min(raw / SaturationPoints, 1.0) * 10
func (s *TrustService) ComputeTrust(b model.TrustBreakdown) (float64, model.TrustLevel, error) {
	if b.DirectFriends < 0 || b.FriendsOfFriends < 0 {
		return 0, "", fmt.Errorf("%w: negative endorsement counts", apperr.ErrValidation)
	}
	if b.DirectFriends+b.FriendsOfFriends == 0 {
		return 0, model.LevelLimitedData, nil
	}

	raw := float64(b.DirectFriends)*DirectWeight + float64(b.FriendsOfFriends)*NetworkWeight
	score := math.Min(raw/SaturationPoints, 1.0) * MaxTrustScore
	return score, LevelFor(score), nil
}

// LevelFor buckets a score into its fixed-threshold trust level.
func LevelFor(score float64) model.TrustLevel {
	switch {
	case score >= HighlyTrustedMin:
		return model.LevelHighlyTrusted
	case score >= TrustedMin:
		return model.LevelTrusted
	case score >= SomeTrustMin:
		return model.LevelSomeTrust
	default:
		return model.LevelLimitedData
	}
}

// GetTrustScore resolves the trust response for one (item, viewer)
// pair: cache, then social-graph lookup plus pure computation.
func (s *TrustService) GetTrustScore(ctx context.Context, itemID, viewerID string) (*model.TrustResponse, error) {
	if s.cache != nil {
		cached, err := s.cache.GetTrust(ctx, itemID, viewerID)
		if err != nil {
			log.Printf("cache: trust get error: %v", err)
		} else if cached != nil {
			var resp model.TrustResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				return &resp, nil
			}
		}
	}

	item, err := s.content.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	direct, network, err := s.graph.Distance(ctx, viewerID, item.AuthorID)
	if err != nil {
		return nil, err
	}

	breakdown := NewBreakdown(direct, network)
	score, level, err := s.ComputeTrust(breakdown)
	if err != nil {
		return nil, err
	}

	resp := &model.TrustResponse{
		ItemID:    itemID,
		Score:     score,
		Level:     level,
		Breakdown: breakdown,
	}

	if s.cache != nil {
		if err := s.cache.SetTrust(ctx, itemID, viewerID, resp); err != nil {
			log.Printf("cache: trust set error: %v", err)
		}
	}

	return resp, nil
}
