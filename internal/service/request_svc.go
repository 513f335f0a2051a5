package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/OmeoneChain/omeonechain-sub009/internal/apperr"
	"github.com/OmeoneChain/omeonechain-sub009/internal/model"
	"github.com/OmeoneChain/omeonechain-sub009/internal/repository"
)

const maxRequestTitleLen = 200

// RequestService manages the lifecycle of bounty-backed discovery
// requests.
type RequestService struct {
	repo *repository.RequestRepo
}

func NewRequestService(repo *repository.RequestRepo) *RequestService {
	return &RequestService{repo: repo}
}

// Create opens a new request and mints its id. A positive bounty
// starts pending; zero means no bounty.
func (s *RequestService) Create(ctx context.Context, req model.CreateRequestRequest) (*model.CreateRequestResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperr.ErrValidation)
	}
	if len(title) > maxRequestTitleLen {
		return nil, fmt.Errorf("%w: title must be at most %d characters", apperr.ErrValidation, maxRequestTitleLen)
	}
	if req.BountyAmount < 0 {
		return nil, fmt.Errorf("%w: bountyAmount must not be negative", apperr.ErrValidation)
	}
	if req.ExpiresInHrs < 0 {
		return nil, fmt.Errorf("%w: expiresInHours must not be negative", apperr.ErrValidation)
	}

	bountyStatus := model.BountyNone
	if req.BountyAmount > 0 {
		bountyStatus = model.BountyPending
	}

	var expiresAt *time.Time
	if req.ExpiresInHrs > 0 {
		t := time.Now().UTC().Add(time.Duration(req.ExpiresInHrs) * time.Hour)
		expiresAt = &t
	}

	dr := &model.DiscoveryRequest{
		RequestID:    uuid.NewString(),
		RequesterID:  req.RequesterID,
		Title:        title,
		Body:         req.Body,
		Status:       model.RequestOpen,
		BountyAmount: req.BountyAmount,
		BountyStatus: bountyStatus,
		ExpiresAt:    expiresAt,
	}

	if err := s.repo.Create(ctx, dr); err != nil {
		return nil, err
	}
	return &model.CreateRequestResponse{RequestID: dr.RequestID}, nil
}

// Get returns a request by id.
func (s *RequestService) Get(ctx context.Context, requestID string) (*model.DiscoveryRequest, error) {
	return s.repo.FindByRequestID(ctx, requestID)
}

// Respond records an answer. The first response moves an open request
// to answered.
func (s *RequestService) Respond(ctx context.Context, requestID string, req model.RespondRequest) (int64, error) {
	if strings.TrimSpace(req.ResponderID) == "" {
		return 0, fmt.Errorf("%w: responderId is required", apperr.ErrValidation)
	}
	if req.ItemID == "" && strings.TrimSpace(req.Body) == "" {
		return 0, fmt.Errorf("%w: a response needs an itemId or a body", apperr.ErrValidation)
	}

	var itemID *string
	if req.ItemID != "" {
		itemID = &req.ItemID
	}
	return s.repo.AddResponse(ctx, requestID, req.ResponderID, itemID, req.Body)
}

// Close closes a request; a pending bounty is refunded.
func (s *RequestService) Close(ctx context.Context, requestID string) (*model.DiscoveryRequest, error) {
	return s.repo.Close(ctx, requestID)
}

// Award selects a bounty winner. Legal only after the request has left
// the open state and while the bounty is pending.
func (s *RequestService) Award(ctx context.Context, requestID string, responseID int64) (*model.DiscoveryRequest, error) {
	if responseID <= 0 {
		return nil, fmt.Errorf("%w: responseId is required", apperr.ErrValidation)
	}
	return s.repo.Award(ctx, requestID, responseID)
}
