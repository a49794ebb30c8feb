package server

import (
	"github.com/giantswarm/prompteval/internal/llm"
)

// ServerContext holds shared dependencies for MCP tool handlers.
type ServerContext struct {
	LLMClient llm.Client
	OutputDir string
	SuitesDir string // external suites directory (optional)
}
