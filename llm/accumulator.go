package llm

import (
	"slices"
)

// ToolCallAccumulator reassembles fragmented tool calls from a stream.
// Vendors may send a call's id and name once and then drip argument
// fragments, or repeat fields on every fragment; the accumulator merges
// whatever arrives, keyed by the call's index.
//
// It acts as a filter: fragments for a call that is still structurally
// incomplete produce nothing, because a ToolCall without an id, type and
// function name is not a valid value. The moment a call becomes complete its
// snapshot is released, and every later fragment for that index releases an
// updated snapshot, so callers see a monotonically growing view ending in the
// final accumulated value.
//
// State belongs to one stream; the accumulator is not safe for concurrent use.
type ToolCallAccumulator struct {
	calls map[int]*ToolCall
}

func NewToolCallAccumulator() *ToolCallAccumulator {
	return &ToolCallAccumulator{calls: make(map[int]*ToolCall)}
}

// Apply merges one fragment into the call at its index and reports whether
// that call is now complete. When complete is true, the returned ToolCall is
// a snapshot the caller may keep; it never aliases internal state.
func (a *ToolCallAccumulator) Apply(fragment ToolCall) (ToolCall, bool) {
	call, ok := a.calls[fragment.Index]
	if !ok {
		call = &ToolCall{Index: fragment.Index}
		a.calls[fragment.Index] = call
	}
	// Identity fields are first-writer-wins; arguments grow in arrival order.
	if call.ID == "" {
		call.ID = fragment.ID
	}
	if call.Type == "" {
		call.Type = fragment.Type
	}
	if call.Function.Name == "" {
		call.Function.Name = fragment.Function.Name
	}
	call.Function.Arguments += fragment.Function.Arguments
	if !call.Complete() {
		return ToolCall{}, false
	}
	return *call, true
}

// Calls returns the complete calls accumulated so far, in index order.
// Incomplete calls are left out.
func (a *ToolCallAccumulator) Calls() []ToolCall {
	indexes := make([]int, 0, len(a.calls))
	for index, call := range a.calls {
		if call.Complete() {
			indexes = append(indexes, index)
		}
	}
	slices.Sort(indexes)
	out := make([]ToolCall, 0, len(indexes))
	for _, index := range indexes {
		out = append(out, *a.calls[index])
	}
	return out
}
