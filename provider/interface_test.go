package provider

import (
	"context"
	"strings"
	"testing"

	"agentrepl/model"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

var (
	_ model.Provider = (*OllamaProvider)(nil)
	_ model.Provider = (*OpenAIProvider)(nil)
	_ model.Provider = (*OpenRouterProvider)(nil)
	_ model.Provider = (*AnthropicProvider)(nil)
)

// collectStream drains a provider stream the way the controller does and
// returns the streamed text and the reassembled tool calls.
func collectStream(t *testing.T, p model.Provider, messages []model.Message, tools []mcptypes.Tool) (string, []model.ToolCall) {
	t.Helper()

	var text strings.Builder
	acc := model.NewToolCallAccumulator()
	err := p.ChatStream(context.Background(), messages, tools, func(chunk model.Chunk) error {
		if len(chunk.Choices) == 0 {
			return nil
		}
		delta := chunk.Choices[0].Delta
		if delta.Content != nil {
			text.WriteString(*delta.Content)
		}
		acc.Merge(delta.ToolCalls)
		return nil
	})
	require.NoError(t, err)

	return text.String(), acc.ToolCalls()
}
