package service

import (
	"context"
	"fmt"

	"github.com/OmeoneChain/omeonechain-sub009/internal/apperr"
	"github.com/OmeoneChain/omeonechain-sub009/internal/model"
)

// SearchCorpusRepo is the subset of the content repository the
// discovery service needs.
type SearchCorpusRepo interface {
	SearchCorpus(ctx context.Context, f model.SearchFilters) ([]model.ContentItem, error)
}

// DiscoveryService answers filtered, paginated discovery queries,
// optionally gated by a viewer-relative minimum trust score.
type DiscoveryService struct {
	repo  SearchCorpusRepo
	trust *TrustService
}

func NewDiscoveryService(repo SearchCorpusRepo, trust *TrustService) *DiscoveryService {
	return &DiscoveryService{repo: repo, trust: trust}
}

// TagsContainAll reports whether the item's tag set is a superset of
// every wanted tag. Containment, not overlap: {a,b,c} matches {a,b}
// but not {a,d}.
func TagsContainAll(itemTags, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(itemTags))
	for _, t := range itemTags {
		set[t] = struct{}{}
	}
	for _, w := range wanted {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}

// Paginate slices an offset/limit window out of items. An offset past
// the end yields an empty page, not an error.
func Paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// HasMore reports whether more results exist past the current page.
func HasMore(total, offset, limit int) bool {
	return total > offset+limit
}

// Search runs a discovery query: AND-combined filters, recency order,
// offset/limit pagination. All filters are validated before any query
// runs. minTrustScore is evaluated against the requesting viewer's
// trust output, not a global score.
func (s *DiscoveryService) Search(ctx context.Context, viewerID string, f model.SearchFilters) (*model.SearchResponse, error) {
	if f.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", apperr.ErrValidation)
	}
	if f.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", apperr.ErrValidation)
	}
	if f.HasMinTrust && viewerID == "" {
		return nil, fmt.Errorf("%w: minTrustScore requires a viewerId", apperr.ErrValidation)
	}

	corpus, err := s.repo.SearchCorpus(ctx, f)
	if err != nil {
		// Degrade to an empty result set; the handler surfaces the error.
		return &model.SearchResponse{Items: []model.ContentResponse{}}, err
	}

	var matched []model.ContentItem
	trustByItem := make(map[string]float64)
	// Social distance depends only on the author, so one lookup per
	// author covers every item they wrote.
	scoreByAuthor := make(map[string]float64)

	for _, it := range corpus {
		if !TagsContainAll(it.Tags, f.Tags) {
			continue
		}
		if f.HasMinTrust {
			score, ok := scoreByAuthor[it.AuthorID]
			if !ok {
				direct, network, err := s.trust.graph.Distance(ctx, viewerID, it.AuthorID)
				if err != nil {
					return &model.SearchResponse{Items: []model.ContentResponse{}}, err
				}
				score, _, err = s.trust.ComputeTrust(NewBreakdown(direct, network))
				if err != nil {
					return &model.SearchResponse{Items: []model.ContentResponse{}}, err
				}
				scoreByAuthor[it.AuthorID] = score
			}
			if score < f.MinTrustScore {
				continue
			}
			trustByItem[it.ItemID] = score
		}
		matched = append(matched, it)
	}

	total := len(matched)
	page := Paginate(matched, f.Offset, f.Limit)

	items := make([]model.ContentResponse, 0, len(page))
	for _, it := range page {
		resp := contentResponse(it)
		if score, ok := trustByItem[it.ItemID]; ok {
			s := score
			resp.TrustScore = &s
		}
		items = append(items, resp)
	}

	return &model.SearchResponse{
		Items:      items,
		TotalCount: total,
		HasMore:    HasMore(total, f.Offset, f.Limit),
	}, nil
}
