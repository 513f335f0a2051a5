package middleware

import (
	"errors"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/OmeoneChain/omeonechain-sub009/internal/apperr"
)

// Field length limits matching database schema constraints.
const (
	MaxItemIDLen    = 64  // items.item_id VARCHAR(64)
	MaxViewerIDLen  = 64  // engagements.viewer_id VARCHAR(64)
	MaxRequestIDLen = 36  // requests.request_id UUID text form
	MaxTagLen       = 32  // items.tags element limit
	MaxTags         = 10  // tags per filter
	MaxQueryLen     = 128 // free-text search query
)

var (
	// itemIDRe matches content item IDs: alphanumeric, dash, underscore.
	itemIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	// viewerIDRe matches viewer IDs: hex SHA256 hashes or shorter hashed IDs.
	viewerIDRe = regexp.MustCompile(`^[0-9a-f]+$`)
	// requestIDRe matches UUID request IDs.
	requestIDRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	// tagRe matches lowercase tag slugs.
	tagRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// FromAppError maps a sentinel application error onto the standard
// error response shape.
func FromAppError(c fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		return ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, apperr.ErrConflict):
		return ErrorResponse(c, fiber.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, apperr.ErrTransientStore):
		return ErrorResponse(c, fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE", fallback)
	default:
		return ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

// ValidateItemID checks that an item ID is well-formed and within DB limits.
func ValidateItemID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "itemId is required"
	}
	if len(id) > MaxItemIDLen {
		return "", "itemId must be at most 64 characters"
	}
	if !itemIDRe.MatchString(id) {
		return "", "itemId contains invalid characters"
	}
	return id, ""
}

// ValidateViewerID checks that a viewer ID is a valid hex hash.
func ValidateViewerID(id string) (string, string) {
	id = strings.TrimSpace(strings.ToLower(id))
	if id == "" {
		return "", "viewerId is required"
	}
	if len(id) > MaxViewerIDLen {
		return "", "viewerId must be at most 64 characters"
	}
	if !viewerIDRe.MatchString(id) {
		return "", "viewerId must be a hexadecimal hash"
	}
	return id, ""
}

// ValidateRequestID checks that a request ID is a well-formed UUID.
func ValidateRequestID(id string) (string, string) {
	id = strings.TrimSpace(strings.ToLower(id))
	if id == "" {
		return "", "requestId is required"
	}
	if len(id) != MaxRequestIDLen || !requestIDRe.MatchString(id) {
		return "", "requestId must be a UUID"
	}
	return id, ""
}

// ValidateTags parses a comma-separated tag filter into a clean slice.
func ValidateTags(raw string) ([]string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ""
	}
	parts := strings.Split(raw, ",")
	if len(parts) > MaxTags {
		return nil, "at most 10 tags per filter"
	}
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		tag := strings.TrimSpace(strings.ToLower(p))
		if tag == "" {
			continue
		}
		if len(tag) > MaxTagLen {
			return nil, "tags must be at most 32 characters"
		}
		if !tagRe.MatchString(tag) {
			return nil, "tags contain invalid characters"
		}
		tags = append(tags, tag)
	}
	return tags, ""
}

// ValidateQueryText trims and truncates a free-text query.
func ValidateQueryText(q string) string {
	q = strings.TrimSpace(q)
	if len(q) > MaxQueryLen {
		q = q[:MaxQueryLen]
	}
	return q
}
