package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"callcenter-insights-go/internal/logger"
)

const (
	// DefaultBaseURL is the OpenRouter OpenAI-compatible API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "meta-llama/llama-3.1-8b-instruct:free"

	maxResponseSize = 10 << 20
	maxErrorBody    = 4 << 10
)

// Config configures a Client.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	SiteURL  string
	AppTitle string

	Temperature float64
	MaxTokens   int

	// MinInterval is the minimum spacing between calls from one client.
	MinInterval time.Duration
	// Timeout bounds a whole call: throttle wait, attempts and backoff.
	Timeout time.Duration
	Retry   RetryPolicy
}

// DefaultConfig returns the settings for the free OpenRouter tier.
func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		Model:       DefaultModel,
		SiteURL:     "http://localhost:3000",
		AppTitle:    "Call Center Insights",
		Temperature: 0.7,
		MaxTokens:   500,
		MinInterval: 2 * time.Second,
		Timeout:     60 * time.Second,
		Retry:       DefaultRetryPolicy(),
	}
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage holds the token counters reported by the backend.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is a finished, non-streaming answer.
type Completion struct {
	Content      string
	Model        string
	FinishReason string
	Usage        Usage
}

// Client talks to an OpenAI-compatible chat completions endpoint. One client
// is shared per process; its limiter spaces out every call made through it.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Logger
	newTimer   func() backoff.Timer
	onRetry    func(err error, wait time.Duration)
	now        func() time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) {
		c.log = l.WithComponent("llm-client")
	}
}

// WithTimer supplies the timer used for backoff sleeps.
func WithTimer(newTimer func() backoff.Timer) ClientOption {
	return func(c *Client) {
		c.newTimer = newTimer
	}
}

// WithRetryHook is called before every backoff sleep.
func WithRetryHook(fn func(err error, wait time.Duration)) ClientOption {
	return func(c *Client) {
		c.onRetry = fn
	}
}

// NewClient builds a client. Zero fields of cfg fall back to DefaultConfig,
// except MinInterval and Timeout where zero disables the limit and
// Temperature where zero is sent as is.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.AppTitle == "" {
		cfg.AppTitle = def.AppTitle
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = def.Retry
	}

	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(limit, 1),
		log:        logger.Discard(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the model name requests are sent with.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete sends messages and returns the full answer.
func (c *Client) Complete(ctx context.Context, messages []Message) (*Completion, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	var out *Completion
	err := c.retry(ctx, func() error {
		resp, err := c.send(ctx, messages, false)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		out, err = decodeCompletion(resp.Body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("llm complete: %w", err)
	}

	c.log.WithFields(map[string]interface{}{
		"model":        out.Model,
		"total_tokens": out.Usage.TotalTokens,
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Info("llm completion received")
	return out, nil
}

// throttle waits until the client may issue its next call.
func (c *Client) throttle(ctx context.Context) error {
	r := c.limiter.Reserve()
	wait := r.Delay()
	if wait == 0 {
		return nil
	}
	c.log.WithField("wait_ms", wait.Milliseconds()).Debug("throttling llm request")
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return fmt.Errorf("llm throttle: %w", ctx.Err())
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// send performs one HTTP attempt and returns a 2xx response or a classified
// *APIError.
func (c *Client) send(ctx context.Context, messages []Message, stream bool) (*http.Response, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Stream:      stream,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, transportError("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if c.cfg.SiteURL != "" {
		req.Header.Set("HTTP-Referer", c.cfg.SiteURL)
	}
	req.Header.Set("X-Title", c.cfg.AppTitle)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError("%v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := classifyStatus(resp, raw, c.now())
		c.log.WithField("http_status", resp.StatusCode).Debug("llm error response: " + apiErr.Message)
		return nil, apiErr
	}
	return resp, nil
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

func decodeCompletion(r io.Reader) (*Completion, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxResponseSize))
	if err != nil {
		return nil, transportError("read response: %v", err)
	}
	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, transportError("decode response: %v", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, &APIError{Kind: ErrEmptyResponse, Message: "no choices"}
	}
	content := parsed.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return nil, &APIError{Kind: ErrEmptyResponse, Message: "blank content"}
	}
	return &Completion{
		Content:      content,
		Model:        parsed.Model,
		FinishReason: parsed.Choices[0].FinishReason,
		Usage:        parsed.Usage,
	}, nil
}
