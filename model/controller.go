package model

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"agentrepl/config"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// State is the turn controller's position in the conversation.
type State int

const (
	// AwaitingUserInput: the next step reads a line from the console.
	AwaitingUserInput State = iota
	// ResolvingTools: tool results were just appended and the next step sends
	// them to the backend without asking the user.
	ResolvingTools
)

func (s State) String() string {
	switch s {
	case AwaitingUserInput:
		return "awaiting_user_input"
	case ResolvingTools:
		return "resolving_tools"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrExit is returned by Step when the user asks to leave.
var ErrExit = errors.New("exit requested")

// Console is the user-facing side of the loop.
type Console interface {
	// ReadLine blocks for one line of input. It returns io.EOF at end of input.
	ReadLine(ctx context.Context) (string, error)
	// StreamText writes a piece of a streamed answer as it arrives.
	StreamText(text string)
	// EndStream terminates a streamed answer.
	EndStream()
	// ShowMessage writes a complete answer.
	ShowMessage(text string)
	// ShowToolCall announces a tool invocation.
	ShowToolCall(call ToolCall)
	// ShowNotice writes a status line that is not part of the conversation.
	ShowNotice(text string)
}

// ToolInvoker exposes the tools offered to the model. Invoke never fails:
// every problem comes back as result text for the model to read.
type ToolInvoker interface {
	Describe() []mcptypes.Tool
	Invoke(ctx context.Context, name, arguments string) string
}

// Controller runs the conversation: it prompts the user, sends the history to
// the backend and resolves tool calls until the model answers in text.
type Controller struct {
	provider Provider
	tools    ToolInvoker
	console  Console
	history  *History
	cfg      *config.Config
	logger   *zap.Logger
	state    State
}

func NewController(provider Provider, tools ToolInvoker, console Console, cfg *config.Config, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		provider: provider,
		tools:    tools,
		console:  console,
		history:  NewHistory(),
		cfg:      cfg,
		logger:   logger,
		state:    AwaitingUserInput,
	}
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) History() *History {
	return c.history
}

// Run steps until end of input, /exit or cancellation, which all count as a
// normal end. Backend failures are returned.
func (c *Controller) Run(ctx context.Context) error {
	for {
		err := c.Step(ctx)
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) || errors.Is(err, ErrExit) || ctx.Err() != nil {
			return nil
		}
		return err
	}
}

// Step performs one transition. In AwaitingUserInput it reads a line first;
// blank lines return without touching the history or the backend. Every
// other path sends exactly one backend request.
func (c *Controller) Step(ctx context.Context) error {
	if c.state == AwaitingUserInput {
		line, err := c.console.ReadLine(ctx)
		if err != nil {
			return err
		}
		input := strings.TrimSpace(line)
		if input == "" {
			return nil
		}
		if handled, err := c.handleCommand(input); handled {
			return err
		}
		c.history.Append(NewUserMessage(input))
	}

	return c.request(ctx)
}

func (c *Controller) handleCommand(input string) (bool, error) {
	switch input {
	case "/exit", "/quit":
		return true, ErrExit
	case "/reset":
		c.history.Reset()
		c.console.ShowNotice("conversation cleared")
		return true, nil
	default:
		return false, nil
	}
}

func (c *Controller) request(ctx context.Context) error {
	c.history.EnforceLimit(c.cfg.Conversation.MaxMessages)
	if c.history.Len() == 0 {
		// A tool chain outgrew max_messages and nothing usable is left.
		c.logger.Warn("history empty after trim, dropping tool chain")
		c.state = AwaitingUserInput
		c.console.ShowNotice("context limit reached, please ask again")
		return nil
	}

	messages := c.requestMessages()
	tools := c.tools.Describe()

	c.logger.Debug("backend request",
		zap.String("provider", c.provider.Name()),
		zap.String("model", c.provider.GetModel()),
		zap.String("state", c.state.String()),
		zap.Int("messages", len(messages)),
		zap.Bool("stream", c.cfg.Backend.Stream),
	)

	var (
		completion *Completion
		displayed  bool
		err        error
	)
	if c.cfg.Backend.Stream {
		completion, displayed, err = c.drainStream(ctx, messages, tools)
	} else {
		completion, err = c.provider.Chat(ctx, messages, tools)
	}
	if err != nil {
		return fmt.Errorf("%s request failed: %w", c.provider.Name(), err)
	}

	return c.resolve(ctx, completion, displayed)
}

// requestMessages prepends the configured system prompt. It is never stored in
// the history so trimming cannot evict it.
func (c *Controller) requestMessages() []Message {
	messages := c.history.Messages()
	if prompt := c.cfg.Conversation.SystemPrompt; prompt != "" {
		messages = append([]Message{NewSystemMessage(prompt)}, messages...)
	}
	return messages
}

// drainStream consumes the whole stream before anything is decided: tool
// fragments go to the accumulator, text is shown as it arrives and buffered.
func (c *Controller) drainStream(ctx context.Context, messages []Message, tools []mcptypes.Tool) (*Completion, bool, error) {
	acc := NewToolCallAccumulator()
	var text strings.Builder
	displayed := false

	err := c.provider.ChatStream(ctx, messages, tools, func(chunk Chunk) error {
		if len(chunk.Choices) == 0 {
			return nil
		}
		delta := chunk.Choices[0].Delta
		if len(delta.ToolCalls) > 0 {
			acc.Merge(delta.ToolCalls)
		}
		if delta.Content != nil && *delta.Content != "" {
			text.WriteString(*delta.Content)
			c.console.StreamText(*delta.Content)
			displayed = true
		}
		return nil
	})
	if displayed {
		c.console.EndStream()
	}
	if err != nil {
		return nil, displayed, err
	}

	return &Completion{Content: text.String(), ToolCalls: acc.ToolCalls()}, displayed, nil
}

func (c *Controller) resolve(ctx context.Context, completion *Completion, displayed bool) error {
	if len(completion.ToolCalls) > 0 {
		c.state = ResolvingTools
		c.history.Append(NewToolCallMessage(completion.ToolCalls))

		for _, call := range completion.ToolCalls {
			c.console.ShowToolCall(call)
			result := c.tools.Invoke(ctx, call.Name, call.Arguments)
			c.logger.Debug("tool executed",
				zap.String("tool", call.Name),
				zap.String("id", call.ID),
				zap.String("arguments", call.Arguments),
				zap.Int("result_len", len(result)),
			)
			c.history.Append(NewToolMessage(call.ID, result))
		}
		return nil
	}

	c.state = AwaitingUserInput
	if strings.TrimSpace(completion.Content) == "" {
		c.logger.Debug("empty response, nothing appended")
		return nil
	}
	c.history.Append(NewAssistantMessage(completion.Content))
	if !displayed {
		c.console.ShowMessage(completion.Content)
	}
	return nil
}
