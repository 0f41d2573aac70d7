package entropy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/louisbranch/qdatasets/internal/platform/timeouts"
)

// DefaultServiceURL is the ANU QRNG JSON endpoint.
const DefaultServiceURL = "https://qrng.anu.edu.au/API/jsonI.php"

// MaxRequestLength is the largest length the ANU service accepts per request.
const MaxRequestLength = 1024

// maxBodyBytes bounds how much of a response body is read. A full-size
// uint8 response is well under 8 KiB.
const maxBodyBytes = 1 << 20

// HTTPService requests uint8 arrays from a QRNG JSON endpoint with
// GET {url}?length={n}&type=uint8.
type HTTPService struct {
	endpoint *url.URL
	client   *http.Client
}

// NewHTTPService returns a client for rawURL. A nil client uses one with
// timeouts.EntropyRequest as its timeout.
func NewHTTPService(rawURL string, client *http.Client) (*HTTPService, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		rawURL = DefaultServiceURL
	}
	endpoint, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse entropy service url: %w", err)
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return nil, fmt.Errorf("entropy service url must be http or https, got %q", rawURL)
	}
	if client == nil {
		client = &http.Client{Timeout: timeouts.EntropyRequest}
	}
	return &HTTPService{endpoint: endpoint, client: client}, nil
}

// qrngPayload is the wire shape of a QRNG response. Pointers distinguish
// missing fields from zero values.
type qrngPayload struct {
	Success *bool   `json:"success"`
	Type    string  `json:"type"`
	Length  *int    `json:"length"`
	Data    []int   `json:"data"`
	Message *string `json:"message"`
}

// Request performs one GET and converts the outcome into a Response.
func (s *HTTPService) Request(ctx context.Context, byteCount int) Response {
	if byteCount <= 0 || byteCount > MaxRequestLength {
		return Failure{
			Kind:   FailureRequest,
			Reason: fmt.Sprintf("length %d outside 1..%d", byteCount, MaxRequestLength),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.requestURL(byteCount), nil)
	if err != nil {
		return Failure{Kind: FailureRequest, Reason: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Failure{Kind: FailureTransport, Reason: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return Failure{Kind: FailureTransport, Reason: "read body: " + err.Error(), Err: err}
	}
	if len(body) > maxBodyBytes {
		return Failure{Kind: FailureMalformed, Reason: fmt.Sprintf("response body exceeds %d bytes", maxBodyBytes)}
	}

	var payload qrngPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return Failure{Kind: FailureTransport, Reason: fmt.Sprintf("unexpected status %s", resp.Status)}
		}
		return Failure{Kind: FailureMalformed, Reason: "decode body: " + err.Error(), Err: err}
	}
	return decodePayload(payload, byteCount, resp.StatusCode)
}

func (s *HTTPService) requestURL(byteCount int) string {
	u := *s.endpoint
	q := u.Query()
	q.Set("length", strconv.Itoa(byteCount))
	q.Set("type", "uint8")
	u.RawQuery = q.Encode()
	return u.String()
}

func decodePayload(payload qrngPayload, byteCount, status int) Response {
	if payload.Success == nil {
		return Failure{Kind: FailureMalformed, Reason: "response has no success flag"}
	}
	if !*payload.Success {
		reason := "service reported failure"
		if payload.Message != nil && strings.TrimSpace(*payload.Message) != "" {
			reason = *payload.Message
		}
		return Failure{Kind: FailureService, Reason: reason}
	}
	if status < 200 || status > 299 {
		return Failure{Kind: FailureTransport, Reason: fmt.Sprintf("unexpected status %d with success response", status)}
	}
	if payload.Type != "" && payload.Type != "uint8" {
		return Failure{Kind: FailureMalformed, Reason: fmt.Sprintf("response type %q, want uint8", payload.Type)}
	}
	if payload.Length != nil && *payload.Length != byteCount {
		return Failure{Kind: FailureMalformed, Reason: fmt.Sprintf("response length %d, want %d", *payload.Length, byteCount)}
	}
	if payload.Data == nil {
		return Failure{Kind: FailureMalformed, Reason: "response has no data"}
	}
	if len(payload.Data) != byteCount {
		return Failure{Kind: FailureMalformed, Reason: fmt.Sprintf("response has %d values, want %d", len(payload.Data), byteCount)}
	}

	out := make([]uint8, len(payload.Data))
	for i, v := range payload.Data {
		if v < 0 || v > 255 {
			return Failure{Kind: FailureMalformed, Reason: fmt.Sprintf("value %d at index %d is not a uint8", v, i)}
		}
		out[i] = uint8(v)
	}
	return Success{Bytes: out}
}
