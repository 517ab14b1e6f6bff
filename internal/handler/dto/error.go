// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// StatusOK is the status value of successful mutation responses.
const StatusOK = "ok"
