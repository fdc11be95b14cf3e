package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreprocessLinks(t *testing.T) {
	assert.Equal(t, "read https://go.dev now", preprocessLinks("read [the docs](https://go.dev) now"))
	assert.Equal(t, "no links here", preprocessLinks("no links here"))
}

func TestFixInlineCode(t *testing.T) {
	in := "run \x1b[44;3mgo test\x1b[0m first"
	assert.Equal(t, "run \x1b[31mgo test\x1b[0m first", fixInlineCode(in))
}

func TestColorURLsSkipsCode(t *testing.T) {
	out := colorURLs("visit https://a.example\n" + codeBar + " curl https://b.example")
	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[0], "\x1b[31mhttps://a.example\x1b[0m")
	assert.NotContains(t, lines[1], "\x1b[31m")
}

func TestFrameCodeBlocks(t *testing.T) {
	in := strings.Join([]string{
		"intro",
		codeBar + " x := 1",
		codeBar + " y := 2",
		"outro",
	}, "\n")

	lines := strings.Split(stripANSI(frameCodeBlocks(in, 30)), "\n")
	assert.Equal(t, []string{
		"intro",
		strings.Repeat("━", 10) + "[code]" + strings.Repeat("━", 10),
		"x := 1",
		"y := 2",
		strings.Repeat("━", 26),
		"outro",
	}, lines)
}

func TestFrameCodeBlockAtEnd(t *testing.T) {
	lines := strings.Split(stripANSI(frameCodeBlocks(codeBar+" last", 24)), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "last", lines[1])
	assert.Equal(t, strings.Repeat("━", 20), lines[2])
}

func TestRenderMarkdownClampsWidth(t *testing.T) {
	out := stripANSI(RenderMarkdown("short body", 5))
	assert.Contains(t, out, "short")
	assert.Contains(t, out, "body")
}
