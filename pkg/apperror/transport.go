package apperror

import "fmt"

// UpstreamError reports a non-2xx reply from the remote tokenization
// service. The upstream status and body are surfaced to the caller
// unchanged. Only server-side statuses are eligible for retry.
type UpstreamError struct {
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream tokenization service returned status %d", e.StatusCode)
}

// Retryable reports whether the failure may be transient.
func (e *UpstreamError) Retryable() bool {
	return e.StatusCode >= 500
}

// TransportError reports a network-level failure (connection refused, DNS,
// timeout) before any upstream status was received. Always retryable.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("calling tokenization service: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
