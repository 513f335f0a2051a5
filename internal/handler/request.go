package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/OmeoneChain/omeonechain-sub009/internal/middleware"
	"github.com/OmeoneChain/omeonechain-sub009/internal/model"
	"github.com/OmeoneChain/omeonechain-sub009/internal/service"
)

type RequestHandler struct {
	svc *service.RequestService
}

func NewRequestHandler(svc *service.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

// Create handles POST /api/requests
func (h *RequestHandler) Create(c fiber.Ctx) error {
	var req model.CreateRequestRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	requesterID, errMsg := middleware.ValidateViewerID(req.RequesterID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "requesterId must be a hexadecimal hash")
	}
	req.RequesterID = requesterID

	resp, err := h.svc.Create(c.Context(), req)
	if err != nil {
		return middleware.FromAppError(c, err, "Failed to create request")
	}

	Metrics.RequestsCreated.Inc()
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Get handles GET /api/requests/:requestId
func (h *RequestHandler) Get(c fiber.Ctx) error {
	requestID, errMsg := middleware.ValidateRequestID(c.Params("requestId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", errMsg)
	}

	dr, err := h.svc.Get(c.Context(), requestID)
	if err != nil {
		return middleware.FromAppError(c, err, "Failed to look up request")
	}
	return c.JSON(dr)
}

// Respond handles POST /api/requests/:requestId/responses
func (h *RequestHandler) Respond(c fiber.Ctx) error {
	requestID, errMsg := middleware.ValidateRequestID(c.Params("requestId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", errMsg)
	}

	var req model.RespondRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	responderID, errMsg := middleware.ValidateViewerID(req.ResponderID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "responderId must be a hexadecimal hash")
	}
	req.ResponderID = responderID

	if req.ItemID != "" {
		itemID, errMsg := middleware.ValidateItemID(req.ItemID)
		if errMsg != "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", errMsg)
		}
		req.ItemID = itemID
	}

	responseID, err := h.svc.Respond(c.Context(), requestID, req)
	if err != nil {
		return middleware.FromAppError(c, err, "Failed to record response")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"responseId": responseID})
}

// Close handles POST /api/requests/:requestId/close
func (h *RequestHandler) Close(c fiber.Ctx) error {
	requestID, errMsg := middleware.ValidateRequestID(c.Params("requestId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", errMsg)
	}

	dr, err := h.svc.Close(c.Context(), requestID)
	if err != nil {
		return middleware.FromAppError(c, err, "Failed to close request")
	}
	return c.JSON(dr)
}

// Award handles POST /api/requests/:requestId/award
func (h *RequestHandler) Award(c fiber.Ctx) error {
	requestID, errMsg := middleware.ValidateRequestID(c.Params("requestId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", errMsg)
	}

	var req model.AwardRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	dr, err := h.svc.Award(c.Context(), requestID, req.ResponseID)
	if err != nil {
		return middleware.FromAppError(c, err, "Failed to award bounty")
	}

	Metrics.BountiesAwarded.Inc()
	return c.JSON(dr)
}
