package model

// RequestStatus is the lifecycle state of a Request.
type RequestStatus string

// RequestStatusSent is assigned at creation. No transitions exist.
const RequestStatusSent RequestStatus = "sent"

// Placeholders that replace inline media in list views.
const (
	PhotoPlaceholder = "data:image/*;base64,[truncated]"
	AudioPlaceholder = "data:audio/*;base64,[truncated]"
)

// Request is a message submitted by a user. Photo and audio are inline
// data URLs; every content field is optional.
type Request struct {
	ID           string        `json:"_id,omitempty"`
	Email        string        `json:"email"`
	Text         *string       `json:"text"`
	PhotoURL     *string       `json:"photo_url"`
	AudioURL     *string       `json:"audio_url"`
	ContactName  *string       `json:"contact_name"`
	ContactPhone *string       `json:"contact_phone"`
	Lat          *float64      `json:"lat"`
	Lng          *float64      `json:"lng"`
	Status       RequestStatus `json:"status"`
}

// HasPhoto reports whether the request carries non-empty photo data.
func (r *Request) HasPhoto() bool {
	return r.PhotoURL != nil && *r.PhotoURL != ""
}

// HasAudio reports whether the request carries non-empty audio data.
func (r *Request) HasAudio() bool {
	return r.AudioURL != nil && *r.AudioURL != ""
}

// Preview returns a copy with inline media replaced by fixed placeholders.
// Empty or absent media is left as is.
func (r *Request) Preview() Request {
	preview := *r
	if r.HasPhoto() {
		photo := PhotoPlaceholder
		preview.PhotoURL = &photo
	}
	if r.HasAudio() {
		audio := AudioPlaceholder
		preview.AudioURL = &audio
	}
	return preview
}
