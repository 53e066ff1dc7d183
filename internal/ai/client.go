package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/remindagent/internal/config"
	"github.com/example/remindagent/internal/metrics"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Status tags the outcome of a reasoning call
type Status int

const (
	StatusOK Status = iota
	// StatusServiceError covers transport errors, timeouts and exhausted quota
	StatusServiceError
	// StatusParseError covers unparsable or incomplete responses
	StatusParseError
	// StatusUnavailable means no reasoning service is configured
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusServiceError:
		return "service_error"
	case StatusParseError:
		return "parse_error"
	case StatusUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// Result is the tagged outcome of a reasoning call. Value is only meaningful when Status is StatusOK.
type Result[T any] struct {
	Status Status
	Value  T
	Err    error
}

// OK reports whether the call produced a validated value
func (r Result[T]) OK() bool {
	return r.Status == StatusOK
}

var (
	errUnavailable   = errors.New("reasoning service not configured")
	errQuotaExceeded = errors.New("reasoning request budget exhausted")
)

// Completer is the part of a langchaingo model the client uses
type Completer interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Options tunes a Client
type Options struct {
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client talks to the reasoning service. A nil *Client is valid and always
// reports StatusUnavailable, so callers go straight to their fallback.
type Client struct {
	llm     Completer
	limiter *rate.Limiter
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New wraps an existing model
func New(llm Completer, opts Options, logger *zap.Logger, m *metrics.Metrics) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 30
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		llm:     llm,
		limiter: rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60), opts.RequestsPerMinute),
		timeout: opts.Timeout,
		logger:  logger,
		metrics: m,
	}
}

// NewOpenAI creates a client backed by the OpenAI chat completions API
func NewOpenAI(cfg config.AIConfig, logger *zap.Logger, m *metrics.Metrics) (*Client, error) {
	if !cfg.Enabled() {
		return nil, errUnavailable
	}
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	return New(llm, Options{Timeout: cfg.Timeout, RequestsPerMinute: cfg.RequestsPerMinute}, logger, m), nil
}

type validator interface {
	Validate() error
}

// call performs one bounded, non-retried request and decodes the JSON reply into T
func call[T any](ctx context.Context, c *Client, operation, prompt string, maxTokens int, temperature float64) (res Result[T]) {
	if c == nil {
		return Result[T]{Status: StatusUnavailable, Err: errUnavailable}
	}
	start := time.Now()
	defer func() {
		c.metrics.ReasoningRequest(operation, res.Status.String())
		if res.Status != StatusOK {
			c.logger.Warn("reasoning call failed, using fallback",
				zap.String("operation", operation),
				zap.Stringer("status", res.Status),
				zap.Error(res.Err),
				zap.Duration("elapsed", time.Since(start)))
			return
		}
		c.logger.Debug("reasoning call succeeded",
			zap.String("operation", operation),
			zap.Duration("elapsed", time.Since(start)))
	}()

	if !c.limiter.Allow() {
		return Result[T]{Status: StatusServiceError, Err: errQuotaExceeded}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := []llms.MessageContent{{
		Role:  schema.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
	}}
	resp, err := c.llm.GenerateContent(ctx, messages,
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(temperature),
	)
	if err != nil {
		return Result[T]{Status: StatusServiceError, Err: fmt.Errorf("failed to send request: %w", err)}
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return Result[T]{Status: StatusServiceError, Err: errors.New("no response choices returned")}
	}

	var value T
	if err := json.Unmarshal([]byte(cleanJSON(resp.Choices[0].Content)), &value); err != nil {
		return Result[T]{Status: StatusParseError, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if v, ok := any(&value).(validator); ok {
		if err := v.Validate(); err != nil {
			return Result[T]{Status: StatusParseError, Err: fmt.Errorf("invalid response: %w", err)}
		}
	}
	return Result[T]{Status: StatusOK, Value: value}
}

// cleanJSON strips the Markdown code fences models like to wrap JSON in
func cleanJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
