// Package dto defines request and response shapes for the HTTP API.
package dto

// SuccessResponse is a generic success acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// IDResponse returns an allocated identifier.
type IDResponse struct {
	ID int64 `json:"id"`
}
