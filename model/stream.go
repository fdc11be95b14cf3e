package model

// Chunk is one incremental piece of a streamed response. Backends send at
// most one choice per chunk; a chunk with no choices carries nothing.
type Chunk struct {
	Choices []ChunkChoice
}

type ChunkChoice struct {
	Delta Delta
}

// Delta holds the new content of a chunk. Content is nil when the chunk
// carries no text at all, as opposed to an empty string.
type Delta struct {
	Content   *string
	ToolCalls []ToolCallFragment
}

// ToolCallFragment is a partial tool call keyed by its position in the
// response's tool call list. ID and Name normally arrive only on the first
// fragment of an index; ArgumentsDelta is appended to what came before.
type ToolCallFragment struct {
	Index          int
	ID             *string
	Name           *string
	ArgumentsDelta *string
}

// Completion is a whole response, either returned atomically by a backend
// or assembled from a drained stream.
type Completion struct {
	Content   string
	ToolCalls []ToolCall
}

// Ptr returns a pointer to s, for building optional fragment fields.
func Ptr(s string) *string {
	return &s
}

// TextChunk builds a single-choice chunk carrying text.
func TextChunk(text string) Chunk {
	return Chunk{Choices: []ChunkChoice{{Delta: Delta{Content: Ptr(text)}}}}
}

// ToolCallChunk builds a single-choice chunk carrying tool call fragments.
func ToolCallChunk(fragments ...ToolCallFragment) Chunk {
	return Chunk{Choices: []ChunkChoice{{Delta: Delta{ToolCalls: fragments}}}}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
