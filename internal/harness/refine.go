package harness

import (
	"context"
	"fmt"

	"github.com/giantswarm/prompteval/internal/llm"
)

// RefineSpec describes a bounded prompt feedback loop: the response of one
// generation is folded into the next prompt. The harness performs exactly
// Iterations calls and has no opinion on convergence.
type RefineSpec struct {
	Model         string
	SystemMessage string
	Temperature   float64

	// Initial is the first prompt sent.
	Initial string

	// Iterations is the exact number of generation calls to perform.
	Iterations int

	// Next builds the prompt for the following iteration from the previous
	// response. Required when Iterations > 1.
	Next func(prev string) string

	// OnChunk, when set, switches generation to the streaming API and is
	// called with every response chunk as it arrives.
	OnChunk func(chunk string)
}

// Refine runs the feedback loop and returns every response in order. A
// generation failure stops the loop and returns the responses collected so
// far along with the error.
func Refine(ctx context.Context, client llm.Client, spec RefineSpec) ([]string, error) {
	if spec.Iterations <= 0 {
		return nil, fmt.Errorf("iterations must be positive, got %d", spec.Iterations)
	}
	if spec.Iterations > 1 && spec.Next == nil {
		return nil, fmt.Errorf("next function is required for %d iterations", spec.Iterations)
	}

	responses := make([]string, 0, spec.Iterations)
	promptText := spec.Initial

	for i := 0; i < spec.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return responses, err
		}

		req := llm.GenerateRequest{
			Model:         spec.Model,
			SystemMessage: spec.SystemMessage,
			Prompt:        promptText,
			Temperature:   spec.Temperature,
		}

		text, err := generate(ctx, client, req, spec.OnChunk)
		if err != nil {
			return responses, fmt.Errorf("iteration %d: %w", i+1, err)
		}

		responses = append(responses, text)
		if i < spec.Iterations-1 {
			promptText = spec.Next(text)
		}
	}

	return responses, nil
}

func generate(ctx context.Context, client llm.Client, req llm.GenerateRequest, onChunk func(string)) (string, error) {
	if onChunk == nil {
		resp, err := client.Generate(ctx, req)
		if err != nil {
			return "", err
		}
		return resp.Text, nil
	}

	stream, err := client.GenerateStream(ctx, req)
	if err != nil {
		return "", err
	}
	return llm.CollectStream(stream, onChunk)
}
