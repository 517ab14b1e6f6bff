package repository

import (
	"context"
	"fmt"

	"github.com/dropline/dropline/internal/docstore"
	"github.com/dropline/dropline/internal/model"
)

// CreateRequest inserts a request document and sets req.ID.
func (r *Repository) CreateRequest(ctx context.Context, req *model.Request) error {
	doc := docstore.Document{
		"email":         req.Email,
		"text":          optional(req.Text),
		"photo_url":     optional(req.PhotoURL),
		"audio_url":     optional(req.AudioURL),
		"contact_name":  optional(req.ContactName),
		"contact_phone": optional(req.ContactPhone),
		"lat":           optional(req.Lat),
		"lng":           optional(req.Lng),
		"status":        string(req.Status),
	}

	id, err := r.store.CreateDocument(ctx, RequestsCollection, doc)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.ID = id
	return nil
}

// ListRequestsByEmail returns up to limit requests owned by email, in store order.
func (r *Repository) ListRequestsByEmail(ctx context.Context, email string, limit int64) ([]*model.Request, error) {
	docs, err := r.store.GetDocuments(ctx, RequestsCollection, docstore.Filter{"email": email}, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	requests := make([]*model.Request, 0, len(docs))
	for _, doc := range docs {
		var req model.Request
		if err := docstore.Decode(doc, &req); err != nil {
			return nil, fmt.Errorf("failed to decode request: %w", err)
		}
		requests = append(requests, &req)
	}

	return requests, nil
}
