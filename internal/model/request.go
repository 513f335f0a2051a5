package model

import "time"

// RequestStatus is the lifecycle state of a discovery request.
type RequestStatus string

const (
	RequestOpen     RequestStatus = "open"
	RequestAnswered RequestStatus = "answered"
	RequestClosed   RequestStatus = "closed"
)

// BountyStatus tracks the stake attached to a request. Awarded,
// refunded and expired are mutually exclusive terminal states.
type BountyStatus string

const (
	BountyNone     BountyStatus = "none"
	BountyPending  BountyStatus = "pending"
	BountyAwarded  BountyStatus = "awarded"
	BountyRefunded BountyStatus = "refunded"
	BountyExpired  BountyStatus = "expired"
)

// DiscoveryRequest is a "help me find X" request, optionally backed by
// a bounty awarded to the selected responder.
type DiscoveryRequest struct {
	RequestID     string        `json:"requestId"`
	RequesterID   string        `json:"requesterId"`
	Title         string        `json:"title"`
	Body          string        `json:"body,omitempty"`
	Status        RequestStatus `json:"status"`
	BountyAmount  float64       `json:"bountyAmount"`
	BountyStatus  BountyStatus  `json:"bountyStatus"`
	ResponseCount int           `json:"responseCount"`
	WinnerID      *string       `json:"winnerId,omitempty"`
	ExpiresAt     *time.Time    `json:"expiresAt,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	LastUpdated   time.Time     `json:"lastUpdated"`
}

// CreateRequestRequest is the API request body for opening a request.
type CreateRequestRequest struct {
	RequesterID  string  `json:"requesterId"`
	Title        string  `json:"title"`
	Body         string  `json:"body,omitempty"`
	BountyAmount float64 `json:"bountyAmount"`
	ExpiresInHrs int     `json:"expiresInHours,omitempty"`
}

// CreateRequestResponse returns the minted request id.
type CreateRequestResponse struct {
	RequestID string `json:"requestId"`
}

// RespondRequest is the API request body for answering a request.
type RespondRequest struct {
	ResponderID string `json:"responderId"`
	ItemID      string `json:"itemId,omitempty"`
	Body        string `json:"body,omitempty"`
}

// AwardRequest is the API request body for selecting a bounty winner.
type AwardRequest struct {
	RequesterID string `json:"requesterId"`
	ResponseID  int64  `json:"responseId"`
}

// RequestResponse is a single answer attached to a discovery request.
type RequestResponse struct {
	ResponseID  int64     `json:"responseId"`
	RequestID   string    `json:"requestId"`
	ResponderID string    `json:"responderId"`
	ItemID      *string   `json:"itemId,omitempty"`
	Body        string    `json:"body,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
