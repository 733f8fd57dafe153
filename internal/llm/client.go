// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/petar-djukic/go-splice/pkg/types"
)

const (
	defaultTimeout   = 300 * time.Second
	defaultMaxTokens = 4096
	maxRetryAttempts = 3
	baseRetryDelay   = 1 * time.Second
)

// ErrLLMFailure indicates the model call failed (network, auth, rate limit).
var ErrLLMFailure = errors.New("LLM failure")

// ClientConfig configures the Bedrock client.
type ClientConfig struct {
	ModelID     string        // Bedrock model ID (required)
	Region      string        // AWS region (required)
	Profile     string        // AWS credential profile (optional, uses default chain if empty)
	Timeout     time.Duration // Request timeout (default 300s)
	MaxTokens   int           // Max tokens for the response (default 4096)
	Temperature float32       // Sampling temperature (0 leaves the model default)
	Logger      *slog.Logger  // Retry and usage logging (nil discards)
}

// BedrockAPI abstracts the Bedrock ConverseStream call for testing.
type BedrockAPI interface {
	ConverseStream(ctx context.Context, params *bedrockruntime.ConverseStreamInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseStreamOutput, error)
}

// Client wraps the AWS Bedrock runtime client.
type Client struct {
	api         BedrockAPI
	modelID     string
	timeout     time.Duration
	maxTokens   int
	temperature float32
	logger      *slog.Logger
	retryDelay  time.Duration

	mu    sync.Mutex
	usage types.TokenUsage // Cumulative usage across calls
}

// NewClient creates a Bedrock client using the standard AWS credential chain.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.ModelID == "" {
		return nil, fmt.Errorf("%w: model ID is required", ErrLLMFailure)
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: region is required", ErrLLMFailure)
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: loading AWS config: %v", ErrLLMFailure, err)
	}

	return NewClientWithAPI(bedrockruntime.NewFromConfig(awsCfg), cfg), nil
}

// NewClientWithAPI creates a client with a pre-configured API implementation.
// Used for testing with mock clients.
func NewClientWithAPI(api BedrockAPI, cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		api:         api,
		modelID:     cfg.ModelID,
		timeout:     timeout,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
		retryDelay:  baseRetryDelay,
	}
}

// SendPrompt sends the conversation to Bedrock via ConverseStream. Text
// tokens arrive on the first channel as they stream; the second channel
// yields one StreamResponse once streaming ends. On failure the token
// channel is closed and the response carries Err.
func (c *Client) SendPrompt(ctx context.Context, system []brtypes.SystemContentBlock, messages []brtypes.Message) (<-chan string, <-chan *types.StreamResponse) {
	tokenCh := make(chan string, 64)
	resultCh := make(chan *types.StreamResponse, 1)

	go func() {
		defer close(resultCh)

		response, err := c.sendWithRetry(ctx, system, messages, tokenCh)
		if err != nil {
			close(tokenCh)
			resultCh <- &types.StreamResponse{Err: err}
			return
		}

		c.mu.Lock()
		c.usage = c.usage.Add(response.Usage)
		c.mu.Unlock()
		c.logger.Debug("model call finished",
			"input_tokens", response.Usage.InputTokens,
			"output_tokens", response.Usage.OutputTokens,
			"retries", response.Retries)

		resultCh <- response
	}()

	return tokenCh, resultCh
}

// Complete sends the conversation and waits for the full response, draining
// the token stream.
func (c *Client) Complete(ctx context.Context, system []brtypes.SystemContentBlock, messages []brtypes.Message) (*types.StreamResponse, error) {
	tokens, results := c.SendPrompt(ctx, system, messages)
	for range tokens {
	}
	resp := <-results
	if resp == nil {
		return nil, fmt.Errorf("%w: no response", ErrLLMFailure)
	}
	if resp.Err != nil {
		return resp, resp.Err
	}
	return resp, nil
}

// CumulativeUsage returns the total token usage across all calls.
func (c *Client) CumulativeUsage() types.TokenUsage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage
}

// sendWithRetry calls ConverseStream with exponential backoff on throttling.
func (c *Client) sendWithRetry(ctx context.Context, system []brtypes.SystemContentBlock, messages []brtypes.Message, tokenCh chan<- string) (*types.StreamResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetryAttempts; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			c.logger.Warn("model throttled, backing off", "attempt", attempt, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: context cancelled during retry: %v", ErrLLMFailure, ctx.Err())
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)

		output, err := c.api.ConverseStream(callCtx, c.input(system, messages))
		if err != nil {
			cancel()

			var throttle *brtypes.ThrottlingException
			if errors.As(err, &throttle) {
				lastErr = err
				continue
			}

			return nil, c.classifyError(err)
		}

		response := consumeStream(callCtx, output.GetStream(), tokenCh)
		response.Retries = attempt
		cancel()
		return response, nil
	}

	return nil, fmt.Errorf("%w: rate limited after %d retries: %v", ErrLLMFailure, maxRetryAttempts, lastErr)
}

func (c *Client) input(system []brtypes.SystemContentBlock, messages []brtypes.Message) *bedrockruntime.ConverseStreamInput {
	inference := &brtypes.InferenceConfiguration{
		MaxTokens: aws.Int32(int32(c.maxTokens)),
	}
	if c.temperature > 0 {
		inference.Temperature = aws.Float32(c.temperature)
	}
	return &bedrockruntime.ConverseStreamInput{
		ModelId:         aws.String(c.modelID),
		System:          system,
		Messages:        messages,
		InferenceConfig: inference,
	}
}

// classifyError wraps Bedrock errors into ErrLLMFailure with descriptive messages.
func (c *Client) classifyError(err error) error {
	var accessDenied *brtypes.AccessDeniedException
	if errors.As(err, &accessDenied) {
		return fmt.Errorf("%w: credential or permission issue: %v", ErrLLMFailure, err)
	}

	var notFound *brtypes.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: model not found: %s", ErrLLMFailure, c.modelID)
	}

	var validation *brtypes.ValidationException
	if errors.As(err, &validation) {
		return fmt.Errorf("%w: request rejected: %v", ErrLLMFailure, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out after %s", ErrLLMFailure, c.timeout)
	}

	return fmt.Errorf("%w: %v", ErrLLMFailure, err)
}
