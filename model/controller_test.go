package model_test

import (
	"context"
	"errors"
	"testing"

	"agentrepl/config"
	"agentrepl/model"
	"agentrepl/provider/testutil"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(stream bool) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Backend.Model = "mock-model"
	cfg.Backend.Stream = stream
	return cfg
}

func newController(t *testing.T, stream bool, lines ...string) (*model.Controller, *testutil.MockProvider, *testutil.MockConsole, *testutil.MockTools) {
	t.Helper()
	provider := testutil.NewMockProvider("mock-model")
	console := testutil.NewMockConsole(lines...)
	tools := testutil.NewMockTools(map[string]string{
		"calculator":          `{"result": 4}`,
		"get_current_weather": "sunny",
		"search_web":          "results",
	})
	return model.NewController(provider, tools, console, testConfig(stream), nil), provider, console, tools
}

func TestStepIgnoresBlankInput(t *testing.T) {
	for _, line := range []string{"", "   ", "\t\n"} {
		c, provider, _, _ := newController(t, true, line)

		require.NoError(t, c.Step(context.Background()))

		assert.Equal(t, 0, c.History().Len())
		assert.Empty(t, provider.Requests, "backend contacted for %q", line)
		assert.Equal(t, model.AwaitingUserInput, c.State())
	}
}

func TestStepSimpleToolTurn(t *testing.T) {
	c, provider, console, tools := newController(t, true, "what is 2+2")
	provider.ScriptStream([]model.Chunk{
		model.ToolCallChunk(testutil.CalculatorFragments(0, "call_1", "2+2")[:1]...),
		model.ToolCallChunk(testutil.CalculatorFragments(0, "call_1", "2+2")[1:]...),
	})

	require.NoError(t, c.Step(context.Background()))

	assert.Equal(t, model.ResolvingTools, c.State())
	messages := c.History().Messages()
	require.Len(t, messages, 3)

	assert.Equal(t, model.RoleUser, messages[0].Role)
	assert.Equal(t, "what is 2+2", messages[0].Content)

	assert.Equal(t, model.RoleAssistant, messages[1].Role)
	assert.Empty(t, messages[1].Content)
	assert.Equal(t, []model.ToolCall{{ID: "call_1", Name: "calculator", Arguments: `{"expression":"2+2"}`}}, messages[1].ToolCalls)

	assert.Equal(t, model.RoleTool, messages[2].Role)
	assert.Equal(t, "call_1", messages[2].ToolCallID)
	assert.Equal(t, `{"result": 4}`, messages[2].Content)

	require.Len(t, tools.Calls, 1)
	assert.Equal(t, `{"expression":"2+2"}`, tools.Calls[0].Arguments)
	assert.Len(t, console.ToolCalls, 1)
	assert.Zero(t, console.Streams)
}

func TestStepResolvingToolsSkipsInput(t *testing.T) {
	c, provider, console, _ := newController(t, true, "what is 2+2", "never read")
	provider.ScriptStream(
		[]model.Chunk{model.ToolCallChunk(testutil.CalculatorFragments(0, "call_1", "2+2")...)},
		[]model.Chunk{model.TextChunk("2+2 "), model.TextChunk("is 4.")},
	)

	require.NoError(t, c.Step(context.Background()))
	require.Equal(t, model.ResolvingTools, c.State())

	require.NoError(t, c.Step(context.Background()))

	assert.Equal(t, model.AwaitingUserInput, c.State())
	assert.Equal(t, []string{"never read"}, console.Lines)
	require.Len(t, provider.Requests, 2)
	assert.Len(t, provider.Requests[1], 3)

	messages := c.History().Messages()
	require.Len(t, messages, 4)
	assert.Equal(t, model.NewAssistantMessage("2+2 is 4.").Content, messages[3].Content)
	assert.Equal(t, "2+2 is 4.", console.Streamed.String())
	assert.Equal(t, 1, console.Streams)
	assert.Empty(t, console.Shown, "streamed text shown twice")
}

func TestStepMultiToolOrdering(t *testing.T) {
	c, provider, _, tools := newController(t, true, "weather and search")
	provider.ScriptStream([]model.Chunk{
		{Choices: nil},
		model.ToolCallChunk(testutil.CalculatorFragments(0, "id0", "1+1")...),
		model.ToolCallChunk(model.ToolCallFragment{Index: 1, ID: model.Ptr("id1"), Name: model.Ptr("get_current_weather"), ArgumentsDelta: model.Ptr(`{"location":`)}),
		model.ToolCallChunk(
			model.ToolCallFragment{Index: 1, ArgumentsDelta: model.Ptr(`"Beijing"}`)},
			model.ToolCallFragment{Index: 2, ID: model.Ptr("id2"), Name: model.Ptr("search_web"), ArgumentsDelta: model.Ptr(`{"keyword":"go"}`)},
		),
	})

	require.NoError(t, c.Step(context.Background()))

	messages := c.History().Messages()
	require.Len(t, messages, 5)
	require.Len(t, messages[1].ToolCalls, 3)
	for i, id := range []string{"id0", "id1", "id2"} {
		assert.Equal(t, id, messages[1].ToolCalls[i].ID)
		assert.Equal(t, model.RoleTool, messages[2+i].Role)
		assert.Equal(t, id, messages[2+i].ToolCallID)
	}
	assert.Equal(t, []string{"calculator", "get_current_weather", "search_web"},
		[]string{tools.Calls[0].Name, tools.Calls[1].Name, tools.Calls[2].Name})
	assert.Equal(t, "sunny", messages[3].Content)
}

func TestStepUnknownToolKeepsGoing(t *testing.T) {
	c, provider, _, _ := newController(t, true, "do it")
	provider.ScriptStream([]model.Chunk{model.ToolCallChunk(model.ToolCallFragment{
		Index: 0, ID: model.Ptr("x"), Name: model.Ptr("does_not_exist"), ArgumentsDelta: model.Ptr("{}"),
	})})

	require.NoError(t, c.Step(context.Background()))

	messages := c.History().Messages()
	require.Len(t, messages, 3)
	assert.NotEmpty(t, messages[2].Content)
	assert.Equal(t, "x", messages[2].ToolCallID)
}

func TestStepAtomicText(t *testing.T) {
	c, provider, console, _ := newController(t, false, "hello")
	provider.ScriptChat(model.Completion{Content: "Hi there"})

	require.NoError(t, c.Step(context.Background()))

	assert.Equal(t, model.AwaitingUserInput, c.State())
	assert.Equal(t, []string{"Hi there"}, console.Shown)
	assert.Empty(t, console.Streamed.String())
	require.Equal(t, 2, c.History().Len())
}

func TestStepAtomicToolCalls(t *testing.T) {
	c, provider, console, _ := newController(t, false, "what is 2+2")
	provider.ScriptChat(model.Completion{
		Content:   "let me check",
		ToolCalls: []model.ToolCall{{ID: "a1", Name: "calculator", Arguments: `{"expression":"2+2"}`}},
	})

	require.NoError(t, c.Step(context.Background()))

	assert.Equal(t, model.ResolvingTools, c.State())
	messages := c.History().Messages()
	require.Len(t, messages, 3)
	assert.Empty(t, messages[1].Content)
	assert.Empty(t, console.Shown)
}

func TestStepEmptyResponseAppendsNothing(t *testing.T) {
	c, provider, console, _ := newController(t, true, "hello")
	provider.ScriptStream([]model.Chunk{model.TextChunk("")})

	require.NoError(t, c.Step(context.Background()))

	assert.Equal(t, model.AwaitingUserInput, c.State())
	assert.Equal(t, 1, c.History().Len())
	assert.Zero(t, console.Streams)
}

func TestStepBackendErrorPropagates(t *testing.T) {
	c, provider, _, _ := newController(t, true, "hello")
	boom := errors.New("connection refused")
	provider.ChatStreamFunc = func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
		return boom
	}

	err := c.Step(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "mock request failed")
}

func TestStepSendsSystemPromptWithoutStoringIt(t *testing.T) {
	provider := testutil.NewMockProvider("mock-model")
	cfg := testConfig(false)
	cfg.Conversation.SystemPrompt = "You are terse."
	c := model.NewController(provider, testutil.NewMockTools(nil), testutil.NewMockConsole("hello"), cfg, nil)

	require.NoError(t, c.Step(context.Background()))

	require.Len(t, provider.Requests, 1)
	assert.Equal(t, model.RoleSystem, provider.Requests[0][0].Role)
	assert.Equal(t, "You are terse.", provider.Requests[0][0].Content)
	assert.Equal(t, model.RoleUser, c.History().Messages()[0].Role)
}

func TestStepTrimsBeforeEverySend(t *testing.T) {
	provider := testutil.NewMockProvider("mock-model")
	cfg := testConfig(false)
	cfg.Conversation.MaxMessages = 3
	lines := []string{"one", "two", "three"}
	c := model.NewController(provider, testutil.NewMockTools(nil), testutil.NewMockConsole(lines...), cfg, nil)

	for range lines {
		require.NoError(t, c.Step(context.Background()))
	}

	for _, request := range provider.Requests {
		assert.LessOrEqual(t, len(request), 3)
		assert.Equal(t, model.RoleUser, request[0].Role)
	}
	// one, answer, two, answer, three → the last three start at "two".
	assert.Equal(t, "two", provider.Requests[2][0].Content)
}

// A tool chain that alone outgrows max_messages leaves nothing after the trim:
// the conversation is dropped, the user is told, and no request is sent.
func TestStepToolChainOutgrowingLimitClearsHistory(t *testing.T) {
	provider := testutil.NewMockProvider("mock-model")
	twoCalls := func(a, b string) model.Completion {
		return model.Completion{ToolCalls: []model.ToolCall{
			{ID: a, Name: "calculator", Arguments: `{"expression":"1+1"}`},
			{ID: b, Name: "calculator", Arguments: `{"expression":"2+2"}`},
		}}
	}
	provider.ScriptChat(
		model.Completion{Content: "ok"},
		twoCalls("call_1", "call_2"),
		twoCalls("call_3", "call_4"),
	)
	cfg := testConfig(false)
	cfg.Conversation.MaxMessages = 4
	console := testutil.NewMockConsole("earlier", "question")
	c := model.NewController(provider, testutil.NewMockTools(nil), console, cfg, nil)
	ctx := context.Background()

	require.NoError(t, c.Step(ctx)) // earlier → ok
	require.NoError(t, c.Step(ctx)) // question → two tool calls
	require.Equal(t, model.ResolvingTools, c.State())
	require.NoError(t, c.Step(ctx)) // [u,A,t,t] sent → two more tool calls
	require.Len(t, provider.Requests, 3)
	require.Len(t, provider.Requests[2], 4)
	assert.Equal(t, "question", provider.Requests[2][0].Content)
	require.Equal(t, 7, c.History().Len())

	require.NoError(t, c.Step(ctx))

	assert.Len(t, provider.Requests, 3, "no request after the history emptied")
	assert.Equal(t, 0, c.History().Len())
	assert.Equal(t, model.AwaitingUserInput, c.State())
	assert.Equal(t, []string{"context limit reached, please ask again"}, console.Notices)
}

func TestRunEndsOnEOFAndExit(t *testing.T) {
	c, provider, _, _ := newController(t, false, "hi", "", "/exit", "unreachable")

	require.NoError(t, c.Run(context.Background()))

	assert.Len(t, provider.Requests, 1)
	assert.Equal(t, 2, c.History().Len())

	c, _, _, _ = newController(t, false, "hi")
	assert.NoError(t, c.Run(context.Background()))
}

func TestRunReturnsBackendError(t *testing.T) {
	c, provider, _, _ := newController(t, false, "hi")
	provider.ChatFunc = func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool) (*model.Completion, error) {
		return nil, errors.New("401 unauthorized")
	}

	err := c.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestResetCommand(t *testing.T) {
	c, provider, console, _ := newController(t, false, "hi", "/reset")

	require.NoError(t, c.Step(context.Background()))
	require.Equal(t, 2, c.History().Len())

	require.NoError(t, c.Step(context.Background()))

	assert.Equal(t, 0, c.History().Len())
	assert.Len(t, provider.Requests, 1)
	assert.Equal(t, []string{"conversation cleared"}, console.Notices)
}
