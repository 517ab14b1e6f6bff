package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/dropline/dropline/internal/handler/dto"
	"github.com/dropline/dropline/internal/service"
)

// RequestHandler handles request submission and listing.
type RequestHandler struct {
	svc      *service.RequestService
	logger   *slog.Logger
	validate *validator.Validate
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(svc *service.RequestService, logger *slog.Logger) *RequestHandler {
	return &RequestHandler{
		svc:      svc,
		logger:   logger,
		validate: newValidator(),
	}
}

// Create handles POST /request.
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationDetail(err))
		return
	}

	created, err := h.svc.Create(r.Context(), service.CreateRequestInput{
		Email:        req.Email,
		Text:         req.Text,
		PhotoDataURL: req.PhotoDataURL,
		AudioDataURL: req.AudioDataURL,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		Lat:          req.Lat,
		Lng:          req.Lng,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err, "Not Found")
		return
	}

	h.logger.Info("request_created",
		"id", created.ID,
		"has_photo", created.HasPhoto(),
		"has_audio", created.HasAudio(),
	)

	writeJSON(w, http.StatusOK, dto.CreateRequestResponse{
		Status: dto.StatusOK,
		ID:     created.ID,
	})
}

// List handles GET /requests?email=&limit=.
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := dto.ListRequestsQuery{
		Email: q.Get("email"),
		Limit: service.DefaultListLimit,
	}
	if l := q.Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "limit: value is not a valid integer")
			return
		}
		query.Limit = parsed
	}
	if err := h.validate.Struct(&query); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationDetail(err))
		return
	}

	items, err := h.svc.List(r.Context(), query.Email, query.Limit)
	if err != nil {
		handleServiceError(w, r, h.logger, err, "Not Found")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRequestListResponse(items))
}
