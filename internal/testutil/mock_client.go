// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"io"

	"github.com/giantswarm/prompteval/internal/llm"
)

// MockLLMClient is a configurable mock for llm.Client used across test packages.
type MockLLMClient struct {
	// Responses maps prompts to canned responses.
	Responses map[string]string

	// DefaultResponse is returned when no matching key is found in Responses.
	DefaultResponse string

	// Err, when set, is returned by every Generate call.
	Err error

	// Calls tracks the number of Generate invocations.
	Calls int

	// LastRequest stores the most recent GenerateRequest for inspection.
	LastRequest llm.GenerateRequest

	// Prompts records every prompt in call order.
	Prompts []string

	// StreamChunks, when set, is the chunk sequence GenerateStream yields.
	// When nil, the resolved response is yielded as a single chunk.
	StreamChunks []string
}

func (m *MockLLMClient) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	m.Calls++
	m.LastRequest = req
	m.Prompts = append(m.Prompts, req.Prompt)

	if m.Err != nil {
		return nil, m.Err
	}

	if resp, ok := m.Responses[req.Prompt]; ok {
		return &llm.GenerateResponse{Text: resp}, nil
	}

	if m.DefaultResponse != "" {
		return &llm.GenerateResponse{Text: m.DefaultResponse}, nil
	}

	return &llm.GenerateResponse{Text: "mock response"}, nil
}

func (m *MockLLMClient) GenerateStream(ctx context.Context, req llm.GenerateRequest) (llm.Stream, error) {
	resp, err := m.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	chunks := m.StreamChunks
	if chunks == nil {
		chunks = []string{resp.Text}
	}
	return &mockStream{chunks: chunks}, nil
}

type mockStream struct {
	chunks []string
	pos    int
}

func (s *mockStream) Recv() (string, error) {
	if s.pos >= len(s.chunks) {
		return "", io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return chunk, nil
}

func (s *mockStream) Close() {}
