package errors

const (
	// StatusFail marks client errors (4xx).
	StatusFail = "fail"
	// StatusError marks server errors (5xx).
	StatusError = "error"
	// StatusSuccess marks successful responses.
	StatusSuccess = "success"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Status    string       `json:"status"`              // "fail" for 4xx, "error" for 5xx
	Code      string       `json:"code"`                // Business error code, e.g., "INVALID_CREDENTIALS"
	Message   string       `json:"message"`             // User-friendly error message
	Errors    []FieldError `json:"errors,omitempty"`    // Per-field validation failures
	RequestID string       `json:"requestId,omitempty"` // Request tracking ID
}

// SuccessResponse defines the structure for successful responses
type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// StatusFor maps an HTTP status code to the envelope status.
func StatusFor(httpCode int) string {
	if httpCode >= 500 {
		return StatusError
	}

	return StatusFail
}
