package google

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultUserAgent = "gdata/1.0"

// Request is a fully built HTTP request handed to a Transport.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is the raw outcome of a Request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport sends requests. Failures to reach the server are returned as
// errors; any HTTP status, successful or not, is a Response.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// TransportConfig configures the default HTTP transport.
type TransportConfig struct {
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
	// Timeout bounds a whole round trip. Zero means 30 seconds.
	Timeout time.Duration
	// UserAgent overrides the User-Agent header.
	UserAgent string
}

// userAgentTransport sets the User-Agent on each outgoing request.
type userAgentTransport struct {
	UserAgent string
	Transport http.RoundTripper
}

// RoundTrip adds the User-Agent header to the request.
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", t.UserAgent)
	return t.Transport.RoundTrip(req)
}

// HTTPTransport is the net/http backed Transport.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates a Transport from cfg.
func NewHTTPTransport(cfg TransportConfig) *HTTPTransport {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via config
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPTransport{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &userAgentTransport{UserAgent: ua, Transport: base},
		},
	}
}

// NewHTTPTransportFromClient wraps an existing client, e.g. one built by
// golang.org/x/oauth2.
func NewHTTPTransportFromClient(client *http.Client) *HTTPTransport {
	return &HTTPTransport{client: client}
}

// Send performs the request and reads the whole response body.
func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}
