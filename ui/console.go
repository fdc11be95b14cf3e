// Package ui is the line-oriented terminal front end of the REPL.
package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"agentrepl/model"

	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const (
	Prompt       = ">>>> "
	defaultWidth = 80
)

type readResult struct {
	line string
	err  error
}

// Console implements model.Console on a reader and a writer, normally
// stdin and stdout.
type Console struct {
	in       io.Reader
	out      io.Writer
	width    int
	markdown bool
	logger   *zap.Logger

	startOnce sync.Once
	lines     chan readResult
}

// NewConsole creates a console. When out is a terminal its width is used to
// fit tool notices and rendered markdown; otherwise 80 columns are assumed.
func NewConsole(in io.Reader, out io.Writer, renderMarkdown bool, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Console{
		in:       in,
		out:      out,
		width:    terminalWidth(out),
		markdown: renderMarkdown,
		logger:   logger,
		lines:    make(chan readResult),
	}
}

func terminalWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

// Width returns the column count output is fitted to.
func (c *Console) Width() int {
	return c.width
}

// readLoop feeds input lines to the channel until the reader fails. A final
// line without a newline is still delivered before the error.
func (c *Console) readLoop() {
	defer close(c.lines)

	reader := bufio.NewReader(c.in)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			c.lines <- readResult{line: strings.TrimRight(line, "\r\n")}
		}
		if err != nil {
			if err != io.EOF {
				c.lines <- readResult{err: err}
			}
			return
		}
	}
}

// ReadLine implements model.Console. It returns ctx.Err() when the context
// ends while waiting, and io.EOF once input is exhausted.
func (c *Console) ReadLine(ctx context.Context) (string, error) {
	c.startOnce.Do(func() { go c.readLoop() })

	fmt.Fprint(c.out, PromptStyle.Render(Prompt))

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return "", ctx.Err()
	case res, ok := <-c.lines:
		if !ok {
			fmt.Fprintln(c.out)
			return "", io.EOF
		}
		if res.err != nil {
			c.logger.Warn("input read failed", zap.Error(res.err))
			return "", fmt.Errorf("failed to read input: %w", res.err)
		}
		return res.line, nil
	}
}

// StreamText implements model.Console. Text is written unstyled so partial
// lines are never padded.
func (c *Console) StreamText(text string) {
	fmt.Fprint(c.out, text)
}

// EndStream implements model.Console.
func (c *Console) EndStream() {
	fmt.Fprintln(c.out)
}

// ShowMessage implements model.Console.
func (c *Console) ShowMessage(text string) {
	if c.markdown {
		fmt.Fprintln(c.out, RenderMarkdown(text, c.width))
		return
	}
	fmt.Fprintln(c.out, text)
}

// ShowToolCall implements model.Console with a one-line notice cut to the
// terminal width.
func (c *Console) ShowToolCall(call model.ToolCall) {
	fmt.Fprintln(c.out, ToolStyle.Render(c.fit(FormatToolCall(call))))
}

// ShowNotice implements model.Console.
func (c *Console) ShowNotice(text string) {
	fmt.Fprintln(c.out, DimStyle.Render(c.fit(text)))
}

// ShowBanner prints the startup line naming the backend in use.
func (c *Console) ShowBanner(providerName, modelName string) {
	fmt.Fprintln(c.out, TitleStyle.Render("agentrepl")+" "+DimStyle.Render(fmt.Sprintf("%s · %s", providerName, modelName)))
	fmt.Fprintln(c.out, DimStyle.Render("/reset clears the conversation, /exit quits"))
}

// FormatToolCall renders a call as "⚙ name arguments" on a single line.
func FormatToolCall(call model.ToolCall) string {
	args := strings.Join(strings.Fields(call.Arguments), " ")
	if args == "" {
		return "⚙ " + call.Name
	}
	return "⚙ " + call.Name + " " + args
}

func (c *Console) fit(text string) string {
	if c.width <= 1 || runewidth.StringWidth(text) < c.width {
		return text
	}
	return runewidth.Truncate(text, c.width-1, "…")
}
