package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropline/dropline/internal/metrics"
	"github.com/dropline/dropline/internal/model"
	"github.com/dropline/dropline/internal/repository"
)

// RequestService handles request submission and listing.
type RequestService struct {
	repo    *repository.Repository
	metrics metrics.Recorder
}

// NewRequestService creates a new RequestService.
func NewRequestService(repo *repository.Repository, recorder metrics.Recorder) *RequestService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RequestService{
		repo:    repo,
		metrics: recorder,
	}
}

// CreateRequestInput defines input for submitting a request.
type CreateRequestInput struct {
	Email        string
	Text         *string
	PhotoDataURL *string
	AudioDataURL *string
	ContactName  *string
	ContactPhone *string
	Lat          *float64
	Lng          *float64
}

// Create stores a new request with status "sent" and returns it with its ID.
// The owner is not required to exist.
func (s *RequestService) Create(ctx context.Context, input CreateRequestInput) (*model.Request, error) {
	if strings.TrimSpace(input.Email) == "" {
		return nil, ErrInvalidInput
	}

	req := &model.Request{
		Email:        input.Email,
		Text:         input.Text,
		PhotoURL:     input.PhotoDataURL,
		AudioURL:     input.AudioDataURL,
		ContactName:  input.ContactName,
		ContactPhone: input.ContactPhone,
		Lat:          input.Lat,
		Lng:          input.Lng,
		Status:       model.RequestStatusSent,
	}

	if err := s.repo.CreateRequest(ctx, req); err != nil {
		s.metrics.IncStoreError()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.metrics.IncRequestCreated()
	return req, nil
}

// List returns up to limit requests owned by email, with inline media
// replaced by placeholders. A limit of zero or below returns every request.
func (s *RequestService) List(ctx context.Context, email string, limit int) ([]model.Request, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrInvalidInput
	}
	if limit < 0 {
		limit = 0
	}

	start := time.Now()
	stored, err := s.repo.ListRequestsByEmail(ctx, email, int64(limit))
	if err != nil {
		s.metrics.IncStoreError()
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	items := make([]model.Request, 0, len(stored))
	for _, req := range stored {
		items = append(items, req.Preview())
	}

	s.metrics.ObserveRequestsListed(len(items), time.Since(start))
	return items, nil
}
