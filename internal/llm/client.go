package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Client abstracts an OpenAI-compatible text generation API.
type Client interface {
	// Generate sends a completion request and returns the response.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
	// GenerateStream sends a streaming completion request.
	GenerateStream(ctx context.Context, req GenerateRequest) (Stream, error)
}

// Stream yields response text incrementally. Recv returns io.EOF when the
// stream is exhausted.
type Stream interface {
	Recv() (string, error)
	Close()
}

// GenerateRequest is a simplified generation request.
type GenerateRequest struct {
	Model           string
	SystemMessage   string
	Prompt          string
	Temperature     float64
	MaxOutputTokens int
	TopP            float64
	StopSequences   []string
}

// GenerateResponse holds the result of a generation request.
type GenerateResponse struct {
	Text string
}

// StreamReader adapts a chat completion stream to the Stream interface.
type StreamReader struct {
	stream *openai.ChatCompletionStream
}

// Recv reads the next chunk from the stream.
func (s *StreamReader) Recv() (string, error) {
	resp, err := s.stream.Recv()
	if err != nil {
		return "", err
	}
	if len(resp.Choices) > 0 {
		return resp.Choices[0].Delta.Content, nil
	}
	return "", nil
}

// Close closes the stream.
func (s *StreamReader) Close() {
	s.stream.Close()
}

// OpenAIClient implements Client using the OpenAI-compatible API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature *float64
}

// NewOpenAIClient creates a new OpenAI-compatible client.
func NewOpenAIClient(opts ...Option) *OpenAIClient {
	cfg := &clientConfig{
		baseURL: "https://api.openai.com/v1",
		apiKey:  "not-needed",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	config := openai.DefaultConfig(cfg.apiKey)
	config.BaseURL = cfg.baseURL

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(config),
		model:       cfg.model,
		temperature: cfg.temperature,
	}
}

// Generate sends a non-streaming generation request.
func (c *OpenAIClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	req = c.applyDefaults(req)

	resp, err := c.client.CreateChatCompletion(ctx, buildChatRequest(req))
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}

	return &GenerateResponse{
		Text: resp.Choices[0].Message.Content,
	}, nil
}

// GenerateStream sends a streaming generation request.
func (c *OpenAIClient) GenerateStream(ctx context.Context, req GenerateRequest) (Stream, error) {
	req = c.applyDefaults(req)

	stream, err := c.client.CreateChatCompletionStream(ctx, buildChatRequest(req))
	if err != nil {
		return nil, fmt.Errorf("generation stream failed: %w", err)
	}

	return &StreamReader{stream: stream}, nil
}

func buildChatRequest(req GenerateRequest) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemMessage != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemMessage,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	return openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxOutputTokens,
		TopP:        float32(req.TopP),
		Stop:        req.StopSequences,
	}
}

// applyDefaults applies client-level defaults to a request where
// the request does not specify its own values.
func (c *OpenAIClient) applyDefaults(req GenerateRequest) GenerateRequest {
	if req.Model == "" && c.model != "" {
		req.Model = c.model
	}
	if req.Temperature == 0 && c.temperature != nil {
		req.Temperature = *c.temperature
	}
	return req
}

// CollectStream drains a stream and returns the concatenated content. When
// onChunk is non-nil it is invoked with every chunk as it arrives. On a
// stream error the content received so far is returned with the error.
func CollectStream(s Stream, onChunk func(chunk string)) (string, error) {
	defer s.Close()
	var b strings.Builder
	for {
		chunk, err := s.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return b.String(), err
		}
		b.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}
	return b.String(), nil
}
