package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roles(messages []Message) []string {
	out := make([]string, len(messages))
	for i, msg := range messages {
		out[i] = msg.Role
	}
	return out
}

// toolTurn is one user question answered through a single tool call.
func toolTurn(n int) []Message {
	id := fmt.Sprintf("call_%d", n)
	return []Message{
		NewUserMessage(fmt.Sprintf("question %d", n)),
		NewToolCallMessage([]ToolCall{{ID: id, Name: "calculator", Arguments: `{"expression":"1"}`}}),
		NewToolMessage(id, `{"result": 1}`),
		NewAssistantMessage(fmt.Sprintf("answer %d", n)),
	}
}

func TestEnforceLimit(t *testing.T) {
	tests := []struct {
		name      string
		messages  []Message
		limit     int
		wantRoles []string
	}{
		{
			name:      "under limit untouched",
			messages:  toolTurn(1),
			limit:     20,
			wantRoles: []string{RoleUser, RoleAssistant, RoleTool, RoleAssistant},
		},
		{
			name:      "cut lands on user",
			messages:  append(toolTurn(1), toolTurn(2)...),
			limit:     4,
			wantRoles: []string{RoleUser, RoleAssistant, RoleTool, RoleAssistant},
		},
		{
			name:      "cut inside tool exchange drops to next user",
			messages:  append(toolTurn(1), toolTurn(2)...),
			limit:     6,
			wantRoles: []string{RoleUser, RoleAssistant, RoleTool, RoleAssistant},
		},
		{
			name:      "nothing opens a turn",
			messages:  append(toolTurn(1), toolTurn(2)...),
			limit:     3,
			wantRoles: []string{},
		},
		{
			name:      "zero limit",
			messages:  toolTurn(1),
			limit:     0,
			wantRoles: []string{},
		},
		{
			name: "system message survives as first",
			messages: append([]Message{NewSystemMessage("be brief")},
				NewUserMessage("hi"), NewAssistantMessage("hello")),
			limit:     3,
			wantRoles: []string{RoleSystem, RoleUser, RoleAssistant},
		},
		{
			name:      "under limit never trims",
			messages:  toolTurn(1)[2:],
			limit:     20,
			wantRoles: []string{RoleTool, RoleAssistant},
		},
		{
			name:      "at limit never trims",
			messages:  toolTurn(1)[1:],
			limit:     3,
			wantRoles: []string{RoleAssistant, RoleTool, RoleAssistant},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory()
			for _, msg := range tt.messages {
				h.Append(msg)
			}

			h.EnforceLimit(tt.limit)

			assert.Equal(t, tt.wantRoles, roles(h.Messages()))
		})
	}
}

func TestEnforceLimitKeepsNewestTurn(t *testing.T) {
	h := NewHistory()
	for n := 1; n <= 3; n++ {
		for _, msg := range toolTurn(n) {
			h.Append(msg)
		}
	}

	h.EnforceLimit(5)

	messages := h.Messages()
	require.Len(t, messages, 4)
	assert.Equal(t, "question 3", messages[0].Content)
	assert.Equal(t, "call_3", messages[2].ToolCallID)
}

// For every prefix of a realistic conversation and every limit, the trimmed
// history fits and starts a turn.
func TestEnforceLimitInvariant(t *testing.T) {
	var conversation []Message
	for n := 1; n <= 4; n++ {
		conversation = append(conversation, toolTurn(n)...)
		conversation = append(conversation, NewUserMessage("thanks"), NewAssistantMessage("welcome"))
	}

	for size := 0; size <= len(conversation); size++ {
		for limit := 0; limit <= len(conversation)+1; limit++ {
			h := NewHistory()
			for _, msg := range conversation[:size] {
				h.Append(msg)
			}

			h.EnforceLimit(limit)

			messages := h.Messages()
			require.LessOrEqual(t, len(messages), limit)
			if len(messages) > 0 {
				first := messages[0].Role
				require.True(t, first == RoleSystem || first == RoleUser,
					"size %d limit %d starts with %s", size, limit, first)
			}
		}
	}
}

func TestHistoryMessagesIsCopy(t *testing.T) {
	h := NewHistory()
	h.Append(NewUserMessage("hi"))

	messages := h.Messages()
	messages[0].Content = "changed"

	assert.Equal(t, "hi", h.Messages()[0].Content)
}

func TestHistoryReset(t *testing.T) {
	h := NewHistory()
	h.Append(NewUserMessage("hi"))
	h.Reset()
	assert.Equal(t, 0, h.Len())
}

func TestToolName(t *testing.T) {
	messages := toolTurn(7)
	assert.Equal(t, "calculator", ToolName(messages, "call_7"))
	assert.Equal(t, "", ToolName(messages, "missing"))
}
