package types

// SuccessEnvelope wraps every 2xx body served by the view server.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error shape. RequestID echoes X-Request-Id so
// a failed cart action can be matched to its log lines.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Details   any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// IsRetryable reports whether the same request may succeed later without
// the caller changing anything.
func (e APIError) IsRetryable() bool {
	return e.Code == "DEPENDENCY_ERROR" || e.Code == "INTERNAL_ERROR"
}
