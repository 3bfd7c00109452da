package classtop

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// Client is the authorized request dispatcher: every outbound call that needs
// uniform error handling goes through Do. It never blocks a request for lack
// of a token; gating access is the guard's job.
type Client struct {
	baseURL        string
	scheme         string
	httpClient     *http.Client
	session        SessionContext
	onUnauthorized func()
	logger         Logger
}

// NewClient returns a dispatcher bound to session for token lookup and 401
// teardown.
func NewClient(cfg Config, session SessionContext) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.GetBaseURL(), "/"),
		scheme:     cfg.GetAuthScheme(),
		httpClient: &http.Client{Timeout: time.Duration(cfg.GetRequestTimeout()) * time.Second},
		session:    session,
		logger:     defLogger{},
	}
}

func (c *Client) WithLogger(logger Logger) *Client {
	c.logger = logger
	return c
}

func (c *Client) WithHTTPClient(client *http.Client) *Client {
	c.httpClient = client
	return c
}

// WithUnauthorizedHandler injects the redirect primitive invoked after a 401
// tears the session down. Tests substitute a no-op and assert on invocation.
func (c *Client) WithUnauthorizedHandler(handler func()) *Client {
	c.onUnauthorized = handler
	return c
}

// Do sends one request and classifies the response. On success the
// envelope's data field is decoded into out; the wrapper is never exposed.
// A nil out discards the body.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.CategoryBadInput, "unable to serialize request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "unable to build request")
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token, ok := c.session.Token(); ok {
		req.Header.Set("Authorization", c.scheme+" "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "request dispatch failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "unable to read response body")
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return c.handleUnauthorized(method, path)

	case resp.StatusCode == http.StatusTooManyRequests:
		c.logger.Warn("Request rate limited", "method", method, "path", path)
		return ErrRateLimited

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		// shaped after ErrRequestFailed; metadata must not land on the
		// shared sentinel
		richErr := errors.New(decodeDetail(raw, ErrRequestFailed.Message), errors.CategoryOperation).
			WithTextCode(ErrRequestFailed.TextCode).
			WithMetadata(map[string]any{
				"method": method,
				"path":   path,
				"status": resp.StatusCode,
			})

		c.logger.Error(
			"Request failed",
			"status", resp.StatusCode,
			"details", print.MaybePrettyJSON(richErr.Metadata),
		)
		return richErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "unable to decode response envelope")
	}

	if len(envelope.Data) == 0 {
		return ErrUnableToDecodeEnvelope
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "unable to decode response data")
	}

	return nil
}

// handleUnauthorized runs the one automatic recovery in this layer. Order
// matters: clear state, then redirect, then propagate the failure.
func (c *Client) handleUnauthorized(method, path string) error {
	c.logger.Info("Session rejected by server, logging out", "method", method, "path", path)

	c.session.Logout()

	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}

	return ErrSessionExpired
}
