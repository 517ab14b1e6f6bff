package dto

import "github.com/dropline/dropline/internal/model"

// CreateRequestRequest represents the request body for POST /request.
type CreateRequestRequest struct {
	Email        string   `json:"email" validate:"required,email"`
	Text         *string  `json:"text"`
	PhotoDataURL *string  `json:"photo_data_url"`
	AudioDataURL *string  `json:"audio_data_url"`
	ContactName  *string  `json:"contact_name"`
	ContactPhone *string  `json:"contact_phone"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
}

// CreateRequestResponse is returned by POST /request.
type CreateRequestResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// ListRequestsQuery holds the query parameters of GET /requests.
// A limit of zero or below lists every matching request.
type ListRequestsQuery struct {
	Email string `json:"email" validate:"required,email"`
	Limit int    `json:"limit"`
}

// RequestItem is one entry of a request listing. The store identifier is
// exposed as "id".
type RequestItem struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	Text         *string  `json:"text"`
	PhotoURL     *string  `json:"photo_url"`
	AudioURL     *string  `json:"audio_url"`
	ContactName  *string  `json:"contact_name"`
	ContactPhone *string  `json:"contact_phone"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	Status       string   `json:"status"`
}

// RequestListResponse is returned by GET /requests.
type RequestListResponse struct {
	Items []RequestItem `json:"items"`
}

// ToRequestItem converts a Request to a list item.
func ToRequestItem(r model.Request) RequestItem {
	return RequestItem{
		ID:           r.ID,
		Email:        r.Email,
		Text:         r.Text,
		PhotoURL:     r.PhotoURL,
		AudioURL:     r.AudioURL,
		ContactName:  r.ContactName,
		ContactPhone: r.ContactPhone,
		Lat:          r.Lat,
		Lng:          r.Lng,
		Status:       string(r.Status),
	}
}

// ToRequestListResponse converts requests to a listing. Items is never null.
func ToRequestListResponse(requests []model.Request) RequestListResponse {
	items := make([]RequestItem, 0, len(requests))
	for _, r := range requests {
		items = append(items, ToRequestItem(r))
	}
	return RequestListResponse{Items: items}
}
