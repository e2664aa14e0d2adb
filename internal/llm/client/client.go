// Package client builds chat model clients for whichever provider the
// user has connected and selected in settings. It consumes the provider
// subsystem's outputs (connection state, selected model, generation
// parameters); it knows nothing about how those were established.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// GenerationOptions are the resolved per-request parameters. Temperature
// is expected to be clamped to the provider's bounds by the caller.
type GenerationOptions struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
}

// LLMClient wraps one constructed chat model.
type LLMClient struct {
	chatModel    model.BaseChatModel
	systemPrompt string

	streamMu     sync.Mutex
	streamCancel context.CancelFunc
}

// NewOpenAIClient builds a client for the hosted OpenAI API, or for any
// OpenAI-compatible endpoint (the local daemon) when baseURL is set.
func NewOpenAIClient(ctx context.Context, apiKey, baseURL string, opts GenerationOptions) (*LLMClient, error) {
	temperature := float32(opts.Temperature)
	maxTokens := opts.MaxTokens
	cfg := &openai.ChatModelConfig{
		APIKey:      apiKey,
		Model:       opts.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	}
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
	chatModel, err := openai.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create openai chat model: %w", err)
	}
	return &LLMClient{chatModel: chatModel, systemPrompt: opts.SystemPrompt}, nil
}

// NewClaudeClient builds a client for the Anthropic API.
func NewClaudeClient(ctx context.Context, apiKey string, opts GenerationOptions) (*LLMClient, error) {
	temperature := float32(opts.Temperature)
	chatModel, err := claude.NewChatModel(ctx, &claude.Config{
		APIKey:      apiKey,
		Model:       opts.Model,
		MaxTokens:   opts.MaxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("create claude chat model: %w", err)
	}
	return &LLMClient{chatModel: chatModel, systemPrompt: opts.SystemPrompt}, nil
}

// NewGeminiClient builds a client for the Gemini API.
func NewGeminiClient(ctx context.Context, apiKey string, opts GenerationOptions) (*LLMClient, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	temperature := float32(opts.Temperature)
	maxTokens := opts.MaxTokens
	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      genaiClient,
		Model:       opts.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini chat model: %w", err)
	}
	return &LLMClient{chatModel: chatModel, systemPrompt: opts.SystemPrompt}, nil
}

func (c *LLMClient) messages(prompt string) []*schema.Message {
	msgs := make([]*schema.Message, 0, 2)
	if strings.TrimSpace(c.systemPrompt) != "" {
		msgs = append(msgs, schema.SystemMessage(c.systemPrompt))
	}
	return append(msgs, schema.UserMessage(prompt))
}

// Generate runs one blocking completion.
func (c *LLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.chatModel.Generate(ctx, c.messages(prompt))
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("model returned no message")
	}
	return resp.Content, nil
}

// Stream runs one completion, delivering chunks as they arrive. Only one
// stream per client runs at a time; starting a new one stops the last.
func (c *LLMClient) Stream(ctx context.Context, prompt string, onChunk func(string)) error {
	streamCtx, cancel := context.WithCancel(ctx)
	c.streamMu.Lock()
	if c.streamCancel != nil {
		c.streamCancel()
	}
	c.streamCancel = cancel
	c.streamMu.Unlock()
	defer func() {
		cancel()
		c.streamMu.Lock()
		if c.streamCancel != nil {
			c.streamCancel = nil
		}
		c.streamMu.Unlock()
	}()

	reader, err := c.chatModel.Stream(streamCtx, c.messages(prompt))
	if err != nil {
		return err
	}
	defer reader.Close()

	for {
		msg, recvErr := reader.Recv()
		if recvErr != nil {
			if errors.Is(recvErr, io.EOF) {
				return nil
			}
			return recvErr
		}
		if msg != nil && msg.Content != "" && onChunk != nil {
			onChunk(msg.Content)
		}
	}
}

// StopStream cancels the in-flight stream, if any.
func (c *LLMClient) StopStream() {
	c.streamMu.Lock()
	defer c.streamMu.Unlock()
	if c.streamCancel != nil {
		c.streamCancel()
		c.streamCancel = nil
	}
}
