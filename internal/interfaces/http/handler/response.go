package handler

import "github.com/gridbase/backend/internal/interfaces/http/dto"

// Typed envelope shapes referenced by the swagger annotations. The
// handlers respond through the dto package; these only give the
// generator concrete schemas for the generic wrapper.

// APIResponse is the standard envelope with a typed data field
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the envelope of a failed request
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// SuccessResponse is the envelope of a data-less success
// @Description Simple success response without data
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// CountData carries the result of row count endpoints
// @Description Count data
type CountData struct {
	Count int64 `json:"count"`
}
