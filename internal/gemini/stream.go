// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the HTTP client for the Gemini text-generation API.
package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kiann/seraa-tui/internal/model"
)

// =============================================================================
// STREAM TYPES
// =============================================================================

// StreamChunk is one event delivered to a streaming callback. Fragments
// arrive in order and are concatenated by the consumer; the final chunk has
// Done set and carries no text.
type StreamChunk struct {
	Text string
	Done bool
}

// StreamCallback receives stream chunks as they arrive.
type StreamCallback func(StreamChunk)

// =============================================================================
// STREAMING GENERATION
// =============================================================================

// GenerateStream performs a streaming generation call, delivering response
// fragments to the callback as they arrive. Exactly one terminal event
// occurs per call: either a Done chunk followed by a nil return, or an error
// return with no Done chunk. A safety block encountered mid-stream stops
// fragment processing immediately and is returned as a *BlockedError, as is
// a stream that ends without having produced any text — the same
// empty-result rule the non-streaming path applies.
func (c *Client) GenerateStream(ctx context.Context, prompt, credential string, threshold model.SafetyThreshold, callback StreamCallback) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(newGenerateRequest(prompt, threshold))
	if err != nil {
		return &ClientError{Type: ErrTypeUnknown, Message: "failed to encode request", Cause: err}
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse&key=%s", c.config.BaseURL, c.config.Model, credential)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return &ClientError{Type: ErrTypeConnection, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp)
	}

	reader := newSSEReader(resp.Body)
	sawText := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunk, err := reader.next()
		if err == io.EOF {
			if !sawText {
				return &BlockedError{}
			}
			callback(StreamChunk{Done: true})
			return nil
		}
		if err != nil {
			return err
		}
		if chunk == nil {
			// Malformed or empty event: skipped, stream continues.
			continue
		}

		if chunk.Error != nil {
			return &ClientError{Type: ErrTypeUpstream, Message: chunk.Error.Message}
		}
		if reason := chunk.blockReason(); reason != "" {
			return &BlockedError{Reason: reason}
		}
		if text := chunk.text(); text != "" {
			sawText = true
			callback(StreamChunk{Text: text})
		}
	}
}

// =============================================================================
// SSE READER
// =============================================================================

// sseReader parses the server-sent-event framing of a streaming response:
// one JSON document per "data:" line.
type sseReader struct {
	reader *bufio.Reader
}

func newSSEReader(r io.Reader) *sseReader {
	return &sseReader{reader: bufio.NewReaderSize(r, 64*1024)}
}

// next returns the next decoded event. A nil chunk with nil error means the
// line carried nothing usable (comment, blank line, or malformed JSON) and
// should be skipped.
func (s *sseReader) next() (*generateResponse, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && strings.TrimSpace(line) == "" {
			return nil, io.EOF
		}
		if err != io.EOF {
			return nil, &ClientError{Type: ErrTypeConnection, Message: "stream read failed", Cause: err}
		}
	}

	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "data:") {
		return nil, nil
	}
	data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
	if data == "" || data == "[DONE]" {
		return nil, nil
	}

	var chunk generateResponse
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		// Malformed fragment: skip it rather than kill the stream.
		return nil, nil
	}
	return &chunk, nil
}

// =============================================================================
// STREAM ACCUMULATOR
// =============================================================================

// StreamAccumulator collects streaming chunks into the final response text.
type StreamAccumulator struct {
	content strings.Builder
	done    bool
}

// NewStreamAccumulator creates an empty accumulator.
func NewStreamAccumulator() *StreamAccumulator {
	return &StreamAccumulator{}
}

// Add processes one chunk.
func (a *StreamAccumulator) Add(chunk StreamChunk) {
	if chunk.Done {
		a.done = true
		return
	}
	a.content.WriteString(chunk.Text)
}

// Content returns the accumulated text.
func (a *StreamAccumulator) Content() string {
	return a.content.String()
}

// IsDone reports whether the terminal completion chunk arrived.
func (a *StreamAccumulator) IsDone() bool {
	return a.done
}
