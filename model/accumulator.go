package model

import "slices"

// ToolCallAccumulator reassembles streamed tool call fragments into complete
// calls. It lives for one response: create a new one (or Reset) per stream.
// It has no notion of completion; the caller decides when the stream ended.
type ToolCallAccumulator struct {
	calls     []ToolCall
	indexes   []int       // fragment index of calls[i]
	positions map[int]int // fragment index → position in calls
}

func NewToolCallAccumulator() *ToolCallAccumulator {
	return &ToolCallAccumulator{positions: make(map[int]int)}
}

// Merge folds fragments into the accumulated calls in the order given. The
// first fragment of an index creates its call; later fragments append their
// argument delta. A missing ID or name is filled by the first later fragment
// that carries one. Absent deltas contribute nothing.
func (a *ToolCallAccumulator) Merge(fragments []ToolCallFragment) {
	for _, frag := range fragments {
		pos, ok := a.positions[frag.Index]
		if !ok {
			a.positions[frag.Index] = len(a.calls)
			a.indexes = append(a.indexes, frag.Index)
			a.calls = append(a.calls, ToolCall{
				ID:        deref(frag.ID),
				Name:      deref(frag.Name),
				Arguments: deref(frag.ArgumentsDelta),
			})
			continue
		}

		call := &a.calls[pos]
		if call.ID == "" && frag.ID != nil {
			call.ID = *frag.ID
		}
		if call.Name == "" && frag.Name != nil {
			call.Name = *frag.Name
		}
		call.Arguments += deref(frag.ArgumentsDelta)
	}
}

// ToolCalls returns a copy of the accumulated calls ordered by fragment index.
func (a *ToolCallAccumulator) ToolCalls() []ToolCall {
	order := make([]int, len(a.calls))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(x, y int) int {
		return a.indexes[x] - a.indexes[y]
	})

	calls := make([]ToolCall, 0, len(a.calls))
	for _, pos := range order {
		calls = append(calls, a.calls[pos])
	}
	return calls
}

func (a *ToolCallAccumulator) Len() int {
	return len(a.calls)
}

func (a *ToolCallAccumulator) Reset() {
	a.calls = nil
	a.indexes = nil
	a.positions = make(map[int]int)
}
