package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/OmeoneChain/omeonechain-sub009/internal/apperr"
	"github.com/OmeoneChain/omeonechain-sub009/internal/middleware"
	"github.com/OmeoneChain/omeonechain-sub009/internal/model"
	"github.com/OmeoneChain/omeonechain-sub009/internal/service"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

type FeedHandler struct {
	trending  *service.TrendingService
	discovery *service.DiscoveryService
}

func NewFeedHandler(trending *service.TrendingService, discovery *service.DiscoveryService) *FeedHandler {
	return &FeedHandler{trending: trending, discovery: discovery}
}

// GetTrending handles GET /api/feed/trending?limit=N
func (h *FeedHandler) GetTrending(c fiber.Ctx) error {
	limit := defaultFeedLimit
	if raw := fiber.Query[string](c, "limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "limit must be a positive integer")
		}
		limit = min(n, maxFeedLimit)
	}

	start := time.Now()
	feed, err := h.trending.GetTrending(c.Context(), limit)
	Metrics.TrendingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		// Reads degrade to an empty set with the error surfaced; the
		// client decides whether to show a toast or stale data.
		if errors.Is(err, apperr.ErrTransientStore) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"items": []model.ContentResponse{},
				"error": fiber.Map{
					"code":    "STORE_UNAVAILABLE",
					"message": "Trending feed is temporarily unavailable",
				},
			})
		}
		return middleware.FromAppError(c, err, "Failed to compute trending feed")
	}

	return c.JSON(fiber.Map{"items": feed})
}

// Search handles GET /api/feed/search
func (h *FeedHandler) Search(c fiber.Ctx) error {
	filters := model.SearchFilters{
		Text:   middleware.ValidateQueryText(fiber.Query[string](c, "q")),
		Offset: fiber.Query[int](c, "offset", 0),
		Limit:  fiber.Query[int](c, "limit", defaultFeedLimit),
	}

	if authorID := fiber.Query[string](c, "authorId"); authorID != "" {
		id, errMsg := middleware.ValidateItemID(authorID)
		if errMsg != "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "authorId contains invalid characters")
		}
		filters.AuthorID = id
	}

	tags, errMsg := middleware.ValidateTags(fiber.Query[string](c, "tags"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", errMsg)
	}
	filters.Tags = tags

	var viewerID string
	if raw := fiber.Query[string](c, "minTrust"); raw != "" {
		minTrust, err := strconv.ParseFloat(raw, 64)
		if err != nil || minTrust < 0 {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "minTrust must be a non-negative number")
		}
		filters.MinTrustScore = minTrust
		filters.HasMinTrust = true

		viewerID, errMsg = middleware.ValidateViewerID(fiber.Query[string](c, "viewerId"))
		if errMsg != "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", errMsg)
		}
	}

	if filters.Limit > maxFeedLimit {
		filters.Limit = maxFeedLimit
	}

	resp, err := h.discovery.Search(c.Context(), viewerID, filters)
	if err != nil {
		if errors.Is(err, apperr.ErrTransientStore) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"items":      []model.ContentResponse{},
				"totalCount": 0,
				"hasMore":    false,
				"error": fiber.Map{
					"code":    "STORE_UNAVAILABLE",
					"message": "Search is temporarily unavailable",
				},
			})
		}
		return middleware.FromAppError(c, err, "Failed to run search")
	}

	return c.JSON(resp)
}
