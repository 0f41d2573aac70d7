package entropy

import "fmt"

// TransientFetchError describes one failed attempt. Source logs it and
// retries; it is never returned to callers of Fetch.
type TransientFetchError struct {
	Attempt int
	Kind    FailureKind
	Reason  string
	Err     error
}

func (e *TransientFetchError) Error() string {
	switch e.Kind {
	case FailureService:
		return fmt.Sprintf("attempt %d: API error: %s", e.Attempt, e.Reason)
	case "":
		return fmt.Sprintf("attempt %d: %s", e.Attempt, e.Reason)
	default:
		return fmt.Sprintf("attempt %d: QRNG API %s error: %s", e.Attempt, e.Kind, e.Reason)
	}
}

func (e *TransientFetchError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt can succeed.
func (e *TransientFetchError) Retryable() bool {
	return e.Kind != FailureRequest
}
