package entropy

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/louisbranch/qdatasets/internal/platform/timeouts"
)

const instrumentationName = "github.com/louisbranch/qdatasets/internal/entropy"

// DefaultMaxAttempts is the attempt budget used when none is configured.
const DefaultMaxAttempts = 3

// RetryPolicy bounds how often and how patiently Fetch asks the service.
type RetryPolicy struct {
	// MaxAttempts counts every request, the first one included. Zero means
	// Fetch gives up without issuing a request.
	MaxAttempts int
	// Delay is the fixed pause between a failed attempt and the next one. It
	// is used only when BackOff is nil.
	Delay time.Duration
	// BackOff schedules the pauses between attempts. It is reset at the start
	// of every Fetch; returning backoff.Stop ends the retries early.
	BackOff backoff.BackOff
}

// schedule returns the pause schedule for one Fetch, reset to its start.
func (p RetryPolicy) schedule() backoff.BackOff {
	b := p.BackOff
	if b == nil {
		delay := p.Delay
		if delay < 0 {
			delay = 0
		}
		b = backoff.NewConstantBackOff(delay)
	}
	b.Reset()
	return b
}

// DefaultRetryPolicy returns three attempts spaced just past the service's
// one-request-per-minute limit.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts, Delay: timeouts.EntropyRetryDelay}
}

// Source fetches entropy through a Service using a RetryPolicy.
type Source struct {
	service Service
	clock   Clock
	gate    *rate.Limiter
	logf    func(format string, args ...any)
	metrics *Metrics
	tracer  trace.Tracer
}

// Option configures a Source.
type Option func(*Source)

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(s *Source) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMinInterval sets the minimum spacing between any two requests issued
// by the Source. Non-positive values disable the gate.
func WithMinInterval(interval time.Duration) Option {
	return func(s *Source) {
		if interval <= 0 {
			s.gate = nil
			return
		}
		s.gate = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithLogf replaces log.Printf for progress and failure messages.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(s *Source) {
		if logf != nil {
			s.logf = logf
		}
	}
}

// WithMetrics records attempts and accepted bytes on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Source) {
		s.metrics = m
	}
}

// WithTracerProvider replaces the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Source) {
		if tp != nil {
			s.tracer = tp.Tracer(instrumentationName)
		}
	}
}

// NewSource returns a Source backed by service. By default it uses the wall
// clock, log.Printf, and a gate of one request per timeouts.EntropyMinInterval.
func NewSource(service Service, opts ...Option) *Source {
	s := &Source{
		service: service,
		clock:   SystemClock{},
		gate:    rate.NewLimiter(rate.Every(timeouts.EntropyMinInterval), 1),
		logf:    log.Printf,
		tracer:  otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch returns exactly byteCount bytes from the service, or false once the
// policy's attempts are spent.
//
// Every attempt, successful or not, consumes service quota, so each one waits
// on the rate gate first. Failed attempts are logged and followed by the next
// pause from the policy's schedule; no pause follows the last one. A
// cancelled ctx ends the loop early.
func (s *Source) Fetch(ctx context.Context, byteCount int, policy RetryPolicy) ([]uint8, bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	if byteCount <= 0 {
		s.logf("entropy: byte count must be positive, got %d", byteCount)
		return nil, false
	}
	if s.service == nil {
		s.logf("entropy: no service configured")
		return nil, false
	}

	delays := policy.schedule()

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := s.waitTurn(ctx); err != nil {
			s.logf("entropy: waiting for rate limit: %v", err)
			return nil, false
		}

		data, err := s.attempt(ctx, attempt, byteCount)
		if err == nil {
			return data, true
		}
		s.logf("%v", err)
		if !err.Retryable() {
			s.logf("entropy: request cannot succeed, giving up")
			return nil, false
		}
		if attempt == policy.MaxAttempts {
			break
		}

		pause := delays.NextBackOff()
		if pause == backoff.Stop {
			s.logf("entropy: retry schedule exhausted after %d attempts", attempt)
			return nil, false
		}
		s.logf("Retrying... (%d/%d)", attempt, policy.MaxAttempts)
		if err := s.clock.Sleep(ctx, pause); err != nil {
			s.logf("entropy: retry wait interrupted: %v", err)
			return nil, false
		}
	}

	if policy.MaxAttempts > 0 {
		s.logf("entropy: giving up after %d attempts", policy.MaxAttempts)
	}
	return nil, false
}

// waitTurn blocks until the rate gate admits one more request.
func (s *Source) waitTurn(ctx context.Context) error {
	if s.gate == nil {
		return ctx.Err()
	}
	now := s.clock.Now()
	reservation := s.gate.ReserveN(now, 1)
	if !reservation.OK() {
		return fmt.Errorf("rate gate rejected request")
	}
	wait := reservation.DelayFrom(now)
	if wait <= 0 {
		return ctx.Err()
	}
	// The limiter works in float tokens; round up so truncation never lets a
	// request in a hair early.
	if rem := wait % time.Millisecond; rem != 0 {
		wait += time.Millisecond - rem
	}
	if err := s.clock.Sleep(ctx, wait); err != nil {
		reservation.CancelAt(s.clock.Now())
		return err
	}
	return nil
}

func (s *Source) attempt(ctx context.Context, attempt, byteCount int) ([]uint8, *TransientFetchError) {
	ctx, span := s.tracer.Start(ctx, "entropy.fetch.attempt", trace.WithAttributes(
		attribute.Int("entropy.attempt", attempt),
		attribute.Int("entropy.byte_count", byteCount),
	))
	defer span.End()

	fail := func(kind FailureKind, reason string, cause error) *TransientFetchError {
		s.metrics.attempt(string(kind))
		span.SetAttributes(attribute.String("entropy.outcome", string(kind)))
		span.SetStatus(codes.Error, reason)
		if cause != nil {
			span.RecordError(cause)
		}
		return &TransientFetchError{Attempt: attempt, Kind: kind, Reason: reason, Err: cause}
	}

	switch resp := s.service.Request(ctx, byteCount).(type) {
	case Success:
		if len(resp.Bytes) != byteCount {
			return nil, fail(FailureMalformed, fmt.Sprintf("service returned %d bytes, want %d", len(resp.Bytes), byteCount), nil)
		}
		s.metrics.attempt(outcomeSuccess)
		s.metrics.accepted(len(resp.Bytes))
		span.SetAttributes(attribute.String("entropy.outcome", outcomeSuccess))
		return append([]uint8(nil), resp.Bytes...), nil
	case Failure:
		kind := resp.Kind
		if kind == "" {
			kind = FailureService
		}
		reason := resp.Reason
		if reason == "" && resp.Err != nil {
			reason = resp.Err.Error()
		}
		return nil, fail(kind, reason, resp.Err)
	default:
		return nil, fail(FailureMalformed, fmt.Sprintf("unexpected response %T", resp), nil)
	}
}
