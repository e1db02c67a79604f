package google

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// RequestInfo describes an outgoing request to listeners.
type RequestInfo struct {
	Method string
	Path   string // Path including the query string
	URL    string
}

// RequestListener observes requests before they are sent.
type RequestListener func(RequestInfo)

// OnRequest registers fn for requests with the given HTTP method. Several
// listeners may be registered for the same method; all of them fire in
// registration order.
func (c *Client) OnRequest(method string, fn RequestListener) {
	method = strings.ToUpper(method)
	c.listeners[method] = append(c.listeners[method], fn)
}

// send builds a request for ep and hands it to the transport. Every operation
// of the client goes through here. Transport errors are returned as they are.
func (c *Client) send(ctx context.Context, method string, ep *endpoint, path string, query url.Values, body []byte, extra http.Header) (*Response, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	header := make(http.Header, len(ep.header)+len(extra)+1)
	header.Set("Authorization", "OAuth "+c.token)
	for k, vs := range ep.header {
		header[k] = slices.Clone(vs)
	}
	for k, vs := range extra {
		header[k] = slices.Clone(vs)
	}

	info := RequestInfo{Method: method, Path: path, URL: ep.baseURL + path}
	for _, fn := range c.listeners[method] {
		fn(info)
	}

	c.logger.Debug("Sending request", "method", method, "path", path, "entity", ep.name)
	resp, err := c.transport.Send(ctx, &Request{
		Method: method,
		URL:    info.URL,
		Header: header,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Received response", "method", method, "path", path, "status", resp.StatusCode)
	return resp, nil
}

// expect checks the status against the accepted set and the response content
// type against the endpoint format.
func expect(resp *Response, ep *endpoint, accepted ...int) error {
	if !slices.Contains(accepted, resp.StatusCode) {
		return &APIError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	if ct := resp.Header.Get("Content-Type"); !ep.format.accepts(ct) {
		return fmt.Errorf("%w: %q for %s %s", ErrUnsupportedContentType, ct, ep.format, ep.name)
	}
	return nil
}

// get issues a GET and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, ep *endpoint, path string, query url.Values) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, ep, path, query, nil, nil)
	if err != nil {
		return nil, err
	}
	if err := expect(resp, ep, http.StatusOK); err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func ifMatch(etag string) http.Header {
	if etag == "" {
		return nil
	}
	h := make(http.Header)
	h.Set("If-Match", etag)
	return h
}
