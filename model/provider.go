package model

import (
	"context"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// Provider abstracts LLM backend implementations (OpenAI, OpenRouter,
// Anthropic, Ollama) behind the provider-agnostic types of this package.
//
// This interface is defined in the model package (not provider package) to avoid
// import cycles: provider implementations import model, and the controller uses
// the Provider interface without importing the provider package.
type Provider interface {
	// Chat sends messages with the available tools and returns the whole response.
	Chat(ctx context.Context, messages []Message, tools []mcptypes.Tool) (*Completion, error)

	// ChatStream sends messages with the available tools and delivers the
	// response chunk by chunk. It returns once the stream is drained.
	ChatStream(ctx context.Context, messages []Message, tools []mcptypes.Tool, callback StreamCallback) error

	// Name returns the provider ID (e.g. "openai").
	Name() string

	// GetModel returns the model name used for API calls.
	GetModel() string
}

// StreamCallback is called for each chunk of a streamed response. Returning an
// error aborts the stream.
type StreamCallback func(chunk Chunk) error
