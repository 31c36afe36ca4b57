package dto

import "time"

// APIResponse is the envelope every successful endpoint returns.
type APIResponse struct {
	Success   bool         `json:"success" example:"true"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewAPIResponse wraps data in a success envelope.
func NewAPIResponse(data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// ListResponse wraps a collection together with its size.
type ListResponse struct {
	Items interface{} `json:"items"`
	Count int         `json:"count"`
}
