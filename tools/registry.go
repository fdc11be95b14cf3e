package tools

import (
	"context"
	"fmt"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// Handler executes one tool call. It follows the mcp-go server handler shape so
// tool code reads the same as an MCP server tool.
type Handler func(ctx context.Context, request mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error)

type entry struct {
	definition mcptypes.Tool
	handler    Handler
}

// Registry maps tool names to their schema and handler. Registration order is
// the order tools are offered to the backend.
type Registry struct {
	order  []string
	tools  map[string]entry
	logger *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		tools:  make(map[string]entry),
		logger: logger,
	}
}

// Register adds a tool. Names must be unique.
func (r *Registry) Register(definition mcptypes.Tool, handler Handler) error {
	if definition.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("tool %s has no handler", definition.Name)
	}
	if _, exists := r.tools[definition.Name]; exists {
		return fmt.Errorf("tool %s already registered", definition.Name)
	}
	r.tools[definition.Name] = entry{definition: definition, handler: handler}
	r.order = append(r.order, definition.Name)
	return nil
}

// Describe returns the schemas of all tools in registration order.
func (r *Registry) Describe() []mcptypes.Tool {
	defs := make([]mcptypes.Tool, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].definition)
	}
	return defs
}

// Invoke runs a tool with the raw argument text from the model and always
// returns text: unknown names, invalid arguments, handler errors and panics
// all become results the model can read.
func (r *Registry) Invoke(ctx context.Context, name, arguments string) string {
	tool, ok := r.tools[name]
	if !ok {
		r.logger.Warn("unknown tool requested", zap.String("tool", name))
		return NotFound(name)
	}

	args, err := ParseArguments(tool.definition.InputSchema, arguments)
	if err != nil {
		r.logger.Debug("invalid tool arguments",
			zap.String("tool", name),
			zap.String("arguments", arguments),
			zap.Error(err),
		)
		return fmt.Sprintf("error: invalid arguments for %s: %v", name, err)
	}

	var request mcptypes.CallToolRequest
	request.Params.Name = name
	request.Params.Arguments = args

	result, err := r.call(ctx, tool.handler, request)
	if err != nil {
		r.logger.Warn("tool failed", zap.String("tool", name), zap.Error(err))
		return "error: " + err.Error()
	}

	text := ResultText(result)
	if result.IsError {
		return "error: " + text
	}
	return text
}

func (r *Registry) call(ctx context.Context, handler Handler, request mcptypes.CallToolRequest) (result *mcptypes.CallToolResult, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			r.logger.Error("tool panicked",
				zap.String("tool", request.Params.Name),
				zap.Any("panic", recovered),
			)
			err = fmt.Errorf("tool %s crashed: %v", request.Params.Name, recovered)
		}
	}()

	result, err = handler(ctx, request)
	if err == nil && result == nil {
		err = fmt.Errorf("tool %s returned no result", request.Params.Name)
	}
	return result, err
}

// NotFound is the result text for a tool name the registry does not know.
func NotFound(name string) string {
	return "tool not found: " + name
}

// ResultText flattens the text content of a tool result.
func ResultText(result *mcptypes.CallToolResult) string {
	if result == nil {
		return ""
	}
	parts := make([]string, 0, len(result.Content))
	for _, content := range result.Content {
		switch c := content.(type) {
		case mcptypes.TextContent:
			parts = append(parts, c.Text)
		case *mcptypes.TextContent:
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n")
}
