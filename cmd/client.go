package cmd

import (
	"os"

	"github.com/giantswarm/prompteval/internal/llm"
)

// newLLMClientFromFlags builds an OpenAI-compatible client from the common
// connection flags shared by the run and serve commands. The API key falls
// back to the OPENAI_API_KEY environment variable when the flag is empty.
func newLLMClientFromFlags(endpoint, apiKey, model string) llm.Client {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	var opts []llm.Option
	if endpoint != "" {
		opts = append(opts, llm.WithBaseURL(endpoint))
	}
	if apiKey != "" {
		opts = append(opts, llm.WithAPIKey(apiKey))
	}
	if model != "" {
		opts = append(opts, llm.WithModel(model))
	}

	return llm.NewOpenAIClient(opts...)
}
