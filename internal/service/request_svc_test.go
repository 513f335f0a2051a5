package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/OmeoneChain/omeonechain-sub009/internal/apperr"
	"github.com/OmeoneChain/omeonechain-sub009/internal/model"
	"github.com/OmeoneChain/omeonechain-sub009/internal/repository"
)

// Validation runs before any query, so a repo with no pool is safe
// here: reaching the database would be a test failure anyway.
func newValidationOnlyRequestService() *RequestService {
	return NewRequestService(repository.NewRequestRepo(nil))
}

func TestCreateRequest_Validation(t *testing.T) {
	svc := newValidationOnlyRequestService()

	tests := []struct {
		name string
		req  model.CreateRequestRequest
	}{
		{"empty title", model.CreateRequestRequest{Title: ""}},
		{"whitespace title", model.CreateRequestRequest{Title: "   "}},
		{"title too long", model.CreateRequestRequest{Title: strings.Repeat("x", 201)}},
		{"negative bounty", model.CreateRequestRequest{Title: "ok", BountyAmount: -5}},
		{"negative expiry", model.CreateRequestRequest{Title: "ok", ExpiresInHrs: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRespond_Validation(t *testing.T) {
	svc := newValidationOnlyRequestService()

	tests := []struct {
		name string
		req  model.RespondRequest
	}{
		{"missing responder", model.RespondRequest{ItemID: "item-1"}},
		{"no item and no body", model.RespondRequest{ResponderID: "abc123"}},
		{"whitespace body only", model.RespondRequest{ResponderID: "abc123", Body: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Respond(context.Background(), "req-1", tt.req)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestAward_Validation(t *testing.T) {
	svc := newValidationOnlyRequestService()

	for _, responseID := range []int64{0, -1} {
		_, err := svc.Award(context.Background(), "req-1", responseID)
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("responseID %d: err = %v, want ErrValidation", responseID, err)
		}
	}
}
