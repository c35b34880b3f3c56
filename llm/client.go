// Package llm holds the canonical chat model and the machinery that drives a
// vendor exchange: the codec and event-mapper contracts, the tool-call
// accumulator, the pull-based chunk stream, and the HTTP client that ties
// them together. Vendor wire formats live in the subpackages openai,
// anthropic and google.
package llm

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog"
)

// errorBodyLimit caps how much of a vendor error body is read for
// classification and diagnostics.
const errorBodyLimit = 64 << 10

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the vendor's default host, e.g. to point at a proxy
// or a self-hosted deployment.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the http.Client used for all exchanges. Timeouts are
// its concern; this package reacts to them like any other transport failure.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// WithHeader adds an extra header to every request, e.g. a beta opt-in or an
// org identifier. Setting the same name twice keeps the last value.
func WithHeader(name, value string) ClientOption {
	return func(c *Client) {
		c.headers.Set(name, value)
	}
}

// Client drives chat exchanges against one vendor through its Codec. Every
// request is independent; a Client may be used from any number of goroutines.
type Client struct {
	codec      Codec
	httpClient *http.Client
	baseURL    string
	headers    http.Header
	log        zerolog.Logger
}

// NewClient returns a Client for the given codec.
func NewClient(codec Codec, opts ...ClientOption) *Client {
	c := &Client{
		codec:      codec,
		httpClient: http.DefaultClient,
		headers:    make(http.Header),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Vendor returns the identifier of the vendor this client talks to.
func (c *Client) Vendor() string {
	return c.codec.Vendor()
}

// Chat sends a non-streaming request and returns the parsed response.
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	resp, err := c.send(ctx, req, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, TransportError(c.codec.Vendor(), err)
	}
	return c.codec.ParseResponse(data)
}

// ChatStream sends a streaming request and returns the chunk stream. The
// caller must Close the stream; cancelling ctx also tears the exchange down.
func (c *Client) ChatStream(ctx context.Context, req *ChatRequest) (Stream, error) {
	resp, err := c.send(ctx, req, true)
	if err != nil {
		return nil, err
	}
	return NewStream(c.codec.Vendor(), resp.Body, c.codec.NewEventMapper()), nil
}

func (c *Client) send(ctx context.Context, req *ChatRequest, stream bool) (*http.Response, error) {
	payload, err := c.codec.BuildRequest(req, stream)
	if err != nil {
		return nil, err
	}

	endpoint := c.codec.Endpoint(c.baseURL, req.Model, stream)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, TransportError(c.codec.Vendor(), err)
	}
	c.applyHeaders(httpReq, stream)

	c.log.Debug().
		Str("vendor", c.codec.Vendor()).
		Str("model", req.Model).
		Bool("stream", stream).
		Str("endpoint", endpoint).
		Msg("sending chat request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, TransportError(c.codec.Vendor(), err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		apiErr := c.codec.ParseError(resp.StatusCode, body)
		c.log.Debug().Err(apiErr).Int("status", resp.StatusCode).Msg("vendor returned an error")
		return nil, apiErr
	}
	return resp, nil
}

// applyHeaders sets codec headers, extra client headers, and the two headers
// the transport owns. Everything goes through Set, so no header name can end
// up with a duplicated value.
func (c *Client) applyHeaders(req *http.Request, stream bool) {
	codecHeaders := c.codec.Headers()
	for name := range codecHeaders {
		req.Header.Set(name, codecHeaders.Get(name))
	}
	for name := range c.headers {
		req.Header.Set(name, c.headers.Get(name))
	}
	req.Header.Set("Content-Type", "application/json")
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	} else {
		req.Header.Set("Accept", "application/json")
	}
}
