package entropy

import "context"

// Service requests byteCount random bytes from an entropy provider once.
type Service interface {
	Request(ctx context.Context, byteCount int) Response
}

// ServiceFunc adapts a function to Service.
type ServiceFunc func(ctx context.Context, byteCount int) Response

// Request calls f.
func (f ServiceFunc) Request(ctx context.Context, byteCount int) Response {
	return f(ctx, byteCount)
}

// Response is the outcome of a single request: Success or Failure.
type Response interface {
	isResponse()
}

// Success carries the bytes returned by the service.
type Success struct {
	Bytes []uint8
}

// FailureKind classifies why a request failed.
type FailureKind string

const (
	// FailureService means the service answered and reported an error.
	FailureService FailureKind = "service"
	// FailureTransport covers network errors and unexpected HTTP statuses.
	FailureTransport FailureKind = "transport"
	// FailureMalformed means the body did not have the expected shape.
	FailureMalformed FailureKind = "malformed"
	// FailureRequest means the request itself can never succeed, e.g. a
	// length the service does not accept. It is not retried.
	FailureRequest FailureKind = "request"
)

// Failure describes a failed request.
type Failure struct {
	Kind   FailureKind
	Reason string
	Err    error
}

func (Success) isResponse() {}
func (Failure) isResponse() {}
