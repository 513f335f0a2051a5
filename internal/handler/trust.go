package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/OmeoneChain/omeonechain-sub009/internal/middleware"
	"github.com/OmeoneChain/omeonechain-sub009/internal/service"
)

type TrustHandler struct {
	svc *service.TrustService
}

func NewTrustHandler(svc *service.TrustService) *TrustHandler {
	return &TrustHandler{svc: svc}
}

// GetTrustScore handles GET /api/items/:itemId/trust?viewerId=X
func (h *TrustHandler) GetTrustScore(c fiber.Ctx) error {
	itemID, errMsg := middleware.ValidateItemID(c.Params("itemId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", errMsg)
	}

	viewerID, errMsg := middleware.ValidateViewerID(fiber.Query[string](c, "viewerId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", errMsg)
	}

	resp, err := h.svc.GetTrustScore(c.Context(), itemID, viewerID)
	if err != nil {
		return middleware.FromAppError(c, err, "Failed to compute trust score")
	}

	return c.JSON(resp)
}
