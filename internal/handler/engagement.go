package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/OmeoneChain/omeonechain-sub009/internal/middleware"
	"github.com/OmeoneChain/omeonechain-sub009/internal/model"
	"github.com/OmeoneChain/omeonechain-sub009/internal/service"
)

type EngagementHandler struct {
	svc *service.EngagementService
}

func NewEngagementHandler(svc *service.EngagementService) *EngagementHandler {
	return &EngagementHandler{svc: svc}
}

// bindToggle validates the shared toggle request body.
func bindToggle(c fiber.Ctx) (model.ToggleRequest, error) {
	var req model.ToggleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return req, middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	itemID, errMsg := middleware.ValidateItemID(req.ItemID)
	if errMsg != "" {
		return req, middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", errMsg)
	}
	req.ItemID = itemID

	viewerID, errMsg := middleware.ValidateViewerID(req.ViewerID)
	if errMsg != "" {
		return req, middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", errMsg)
	}
	req.ViewerID = viewerID

	return req, nil
}

// ToggleLike handles POST /api/engagement/like
func (h *EngagementHandler) ToggleLike(c fiber.Ctx) error {
	req, err := bindToggle(c)
	if err != nil {
		return err
	}

	resp, err := h.svc.ToggleLike(c.Context(), req.ItemID, req.ViewerID)
	if err != nil {
		Metrics.ToggleFailures.Inc()
		return middleware.FromAppError(c, err, "Failed to toggle like")
	}

	Metrics.TogglesTotal.WithLabelValues(model.EngagementLike).Inc()
	return c.JSON(resp)
}

// ToggleBookmark handles POST /api/engagement/bookmark
func (h *EngagementHandler) ToggleBookmark(c fiber.Ctx) error {
	req, err := bindToggle(c)
	if err != nil {
		return err
	}

	resp, err := h.svc.ToggleBookmark(c.Context(), req.ItemID, req.ViewerID)
	if err != nil {
		Metrics.ToggleFailures.Inc()
		return middleware.FromAppError(c, err, "Failed to toggle bookmark")
	}

	Metrics.TogglesTotal.WithLabelValues(model.EngagementBookmark).Inc()
	return c.JSON(resp)
}

// GetState handles GET /api/engagement/state?itemId=&viewerId=
// Used by clients at session start to rebuild optimistic state from
// server truth.
func (h *EngagementHandler) GetState(c fiber.Ctx) error {
	itemID, errMsg := middleware.ValidateItemID(fiber.Query[string](c, "itemId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", errMsg)
	}
	viewerID, errMsg := middleware.ValidateViewerID(fiber.Query[string](c, "viewerId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", errMsg)
	}

	state, err := h.svc.GetState(c.Context(), itemID, viewerID)
	if err != nil {
		return middleware.FromAppError(c, err, "Failed to read engagement state")
	}
	return c.JSON(state)
}

// RecordComment handles POST /api/engagement/comment. The comment body
// lives in the external comment system; only the counter is ledgered.
func (h *EngagementHandler) RecordComment(c fiber.Ctx) error {
	return h.recordCounter(c, h.svc.RecordComment, "Failed to record comment")
}

// RecordReshare handles POST /api/engagement/reshare
func (h *EngagementHandler) RecordReshare(c fiber.Ctx) error {
	return h.recordCounter(c, h.svc.RecordReshare, "Failed to record reshare")
}

func (h *EngagementHandler) recordCounter(c fiber.Ctx, fn func(ctx context.Context, itemID string) error, fallback string) error {
	var req model.ToggleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	itemID, errMsg := middleware.ValidateItemID(req.ItemID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", errMsg)
	}

	if err := fn(c.Context(), itemID); err != nil {
		return middleware.FromAppError(c, err, fallback)
	}
	return c.JSON(fiber.Map{"success": true})
}
