package service

import (
	"context"
	"log"

	"github.com/OmeoneChain/omeonechain-sub009/internal/model"
)

// EngagementLedger is the subset of the engagement repository the
// service needs.
type EngagementLedger interface {
	ToggleLike(ctx context.Context, itemID, viewerID string) (count int, liked bool, err error)
	ToggleBookmark(ctx context.Context, itemID, viewerID string) (count int, bookmarked bool, err error)
	GetState(ctx context.Context, itemID, viewerID string) (*model.EngagementState, error)
	IncrementComments(ctx context.Context, itemID string) error
	IncrementReshares(ctx context.Context, itemID string) error
}

// ItemInvalidator evicts a cached item after a successful write.
type ItemInvalidator interface {
	InvalidateItem(ctx context.Context, itemID string) error
}

// EngagementService exposes the toggle contract callers apply
// optimistically and reconcile against. Each toggle is a single atomic
// operation: under cancellation it either fully applies or fully does
// not, so callers can revert to their pre-toggle state on failure.
type EngagementService struct {
	repo  EngagementLedger
	cache ItemInvalidator
}

func NewEngagementService(repo EngagementLedger, cache ItemInvalidator) *EngagementService {
	return &EngagementService{repo: repo, cache: cache}
}

// ToggleLike flips the viewer's like and returns the authoritative
// count and state for reconciliation.
func (s *EngagementService) ToggleLike(ctx context.Context, itemID, viewerID string) (*model.ToggleLikeResponse, error) {
	count, liked, err := s.repo.ToggleLike(ctx, itemID, viewerID)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, itemID)

	return &model.ToggleLikeResponse{Count: count, Liked: liked}, nil
}

// ToggleBookmark flips the viewer's bookmark.
func (s *EngagementService) ToggleBookmark(ctx context.Context, itemID, viewerID string) (*model.ToggleBookmarkResponse, error) {
	_, bookmarked, err := s.repo.ToggleBookmark(ctx, itemID, viewerID)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, itemID)

	return &model.ToggleBookmarkResponse{Bookmarked: bookmarked}, nil
}

// GetState rebuilds a viewer's engagement state from server truth.
func (s *EngagementService) GetState(ctx context.Context, itemID, viewerID string) (*model.EngagementState, error) {
	return s.repo.GetState(ctx, itemID, viewerID)
}

// RecordComment increments the comment counter after the external
// comment system accepts a comment.
func (s *EngagementService) RecordComment(ctx context.Context, itemID string) error {
	if err := s.repo.IncrementComments(ctx, itemID); err != nil {
		return err
	}
	s.invalidate(ctx, itemID)
	return nil
}

// RecordReshare increments the reshare counter.
func (s *EngagementService) RecordReshare(ctx context.Context, itemID string) error {
	if err := s.repo.IncrementReshares(ctx, itemID); err != nil {
		return err
	}
	s.invalidate(ctx, itemID)
	return nil
}

func (s *EngagementService) invalidate(ctx context.Context, itemID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateItem(ctx, itemID); err != nil {
		log.Printf("cache: invalidate item error: %v", err)
	}
}
