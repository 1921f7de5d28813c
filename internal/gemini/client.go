// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the HTTP client for the Gemini text-generation API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/kiann/seraa-tui/internal/model"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the Gemini client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeRateLimited
	ErrTypeBadCredential
	ErrTypeInvalidResponse
	ErrTypeUpstream
)

// Sentinel errors for easy checking.
var (
	ErrTimeout       = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrRateLimited   = &ClientError{Type: ErrTypeRateLimited, Message: "rate limit exceeded"}
	ErrBadCredential = &ClientError{Type: ErrTypeBadCredential, Message: "API credential rejected"}
)

// BlockedError reports that the service produced no usable candidates
// because of its content filter. It is a success-shaped outcome: callers
// surface it to the user, who can lower the safety threshold and retry.
type BlockedError struct {
	// Reason is the upstream block reason, empty when the service gave
	// none.
	Reason string
}

func (e *BlockedError) Error() string {
	if e.Reason == "" {
		return "response blocked by safety settings"
	}
	return "response blocked by safety settings: " + e.Reason
}

// IsBlocked reports whether err is a content-safety block.
func IsBlocked(err error) bool {
	var blocked *BlockedError
	return errors.As(err, &blocked)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the Gemini client.
type ClientConfig struct {
	// BaseURL is the API base (default: the public v1beta endpoint)
	BaseURL string

	// Model is the generation model name
	Model string

	// Timeout for non-streaming requests (default: 60s)
	Timeout time.Duration

	// StreamTimeout for establishing streaming connections (default: 10s)
	StreamTimeout time.Duration

	// RequestsPerMinute caps outgoing calls; 0 disables the limiter
	RequestsPerMinute int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:       "https://generativelanguage.googleapis.com/v1beta",
		Model:         "gemini-1.5-flash-latest",
		Timeout:       60 * time.Second,
		StreamTimeout: 10 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Gemini generation API.
//
// The Client is safe for concurrent use. The credential is supplied per call
// rather than held by the client, so a key change takes effect on the next
// request.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	// streamClient has no overall timeout; streams are bounded only on
	// response-header arrival and by the caller's context.
	streamClient *http.Client
	limiter      *rate.Limiter
}

// NewClient creates a Gemini client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a Gemini client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	def := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = def.BaseURL
	}
	if config.Model == "" {
		config.Model = def.Model
	}
	if config.Timeout == 0 {
		config.Timeout = def.Timeout
	}
	if config.StreamTimeout == 0 {
		config.StreamTimeout = def.StreamTimeout
	}

	var limiter *rate.Limiter
	if config.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(config.RequestsPerMinute)/60.0), config.RequestsPerMinute)
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		streamClient: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: config.StreamTimeout,
			},
		},
		limiter: limiter,
	}
}

// Model returns the configured generation model name.
func (c *Client) Model() string {
	return c.config.Model
}

// =============================================================================
// NON-STREAMING GENERATION
// =============================================================================

// Generate performs a one-shot generation call and returns the full response
// text. An empty candidate set is returned as a *BlockedError, never as an
// ordinary empty success.
func (c *Client) Generate(ctx context.Context, prompt, credential string, threshold model.SafetyThreshold) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	body, err := json.Marshal(newGenerateRequest(prompt, threshold))
	if err != nil {
		return "", &ClientError{Type: ErrTypeUnknown, Message: "failed to encode request", Cause: err}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.config.BaseURL, c.config.Model, credential)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", &ClientError{Type: ErrTypeConnection, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.statusError(resp)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	if decoded.Error != nil {
		return "", &ClientError{Type: ErrTypeUpstream, Message: decoded.Error.Message}
	}

	text := decoded.text()
	if text == "" {
		return "", &BlockedError{Reason: decoded.blockReason()}
	}
	return text, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// wait blocks on the rate limiter, if one is configured.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return &ClientError{Type: ErrTypeRateLimited, Message: "rate limiter interrupted", Cause: err}
	}
	return nil
}

// statusError converts a non-200 HTTP response into a typed error, using the
// API's error envelope when the body carries one.
func (c *Client) statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	message := "API request failed with status " + resp.Status
	var envelope struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return &ClientError{Type: ErrTypeRateLimited, Message: message}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ClientError{Type: ErrTypeBadCredential, Message: message}
	default:
		return &ClientError{Type: ErrTypeUpstream, Message: message}
	}
}
