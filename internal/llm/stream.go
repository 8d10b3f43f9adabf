package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
)

const maxEventSize = 1 << 20

// Stream yields content fragments of a streaming completion.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	cancel  context.CancelFunc

	mu     sync.Mutex
	done   bool
	closed bool
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// CompleteStreaming opens a streaming completion. Only opening the stream is
// retried; the caller must Close the returned stream.
func (c *Client) CompleteStreaming(ctx context.Context, messages []Message) (*Stream, error) {
	var cancel context.CancelFunc
	if c.cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	if err := c.throttle(ctx); err != nil {
		cancel()
		return nil, err
	}

	var s *Stream
	err := c.retry(ctx, func() error {
		resp, err := c.send(ctx, messages, true)
		if err != nil {
			return err
		}
		s = newStream(resp.Body, cancel)
		return nil
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("llm stream: %w", err)
	}
	c.log.Debug("llm stream opened")
	return s, nil
}

func newStream(body io.ReadCloser, cancel context.CancelFunc) *Stream {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64<<10), maxEventSize)
	return &Stream{body: body, scanner: sc, cancel: cancel}
}

// Recv returns the next non-empty content fragment. It returns io.EOF after
// the [DONE] sentinel or the end of the body. Malformed events are skipped.
func (s *Stream) Recv() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done || s.closed {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") || !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			s.done = true
			return "", io.EOF
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		return chunk.Choices[0].Delta.Content, nil
	}

	s.done = true
	if err := s.scanner.Err(); err != nil {
		return "", transportError("read stream: %v", err)
	}
	return "", io.EOF
}

// Close stops the stream and releases the connection. It is safe to call
// more than once.
func (s *Stream) Close() error {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
