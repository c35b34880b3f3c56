package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulatorReassemblesFragments(t *testing.T) {
	acc := NewToolCallAccumulator()

	snapshot, ready := acc.Apply(ToolCall{
		Index:    0,
		ID:       "call_1",
		Type:     ToolTypeFunction,
		Function: FunctionCall{Name: "get_weather"},
	})
	require.True(t, ready, "A fragment carrying the full identity completes the call")
	assert.Equal(t, "call_1", snapshot.ID)
	assert.Equal(t, "get_weather", snapshot.Function.Name)
	assert.Empty(t, snapshot.Function.Arguments)

	for _, fragment := range []string{`{"c`, `ity":`, `"Paris"}`} {
		snapshot, ready = acc.Apply(ToolCall{Index: 0, Function: FunctionCall{Arguments: fragment}})
		require.True(t, ready, "Fragments after completeness must re-emit the call")
	}
	assert.Equal(t, `{"city":"Paris"}`, snapshot.Function.Arguments,
		"Argument fragments must concatenate in arrival order")
}

func TestAccumulatorNeverEmitsIncomplete(t *testing.T) {
	acc := NewToolCallAccumulator()

	_, ready := acc.Apply(ToolCall{Index: 0, Function: FunctionCall{Arguments: `{"a":`}})
	assert.False(t, ready)
	_, ready = acc.Apply(ToolCall{Index: 0, Function: FunctionCall{Arguments: `1}`}})
	assert.False(t, ready, "Arguments alone never complete a call")
	assert.Empty(t, acc.Calls(), "Incomplete calls must not be listed")

	// Identity without a function name is still incomplete.
	_, ready = acc.Apply(ToolCall{Index: 1, ID: "call_2", Type: ToolTypeFunction})
	assert.False(t, ready)
}

func TestAccumulatorCompletenessArrivesLate(t *testing.T) {
	acc := NewToolCallAccumulator()

	_, ready := acc.Apply(ToolCall{Index: 0, Function: FunctionCall{Arguments: `{"city":`}})
	require.False(t, ready)

	snapshot, ready := acc.Apply(ToolCall{
		Index:    0,
		ID:       "call_1",
		Type:     ToolTypeFunction,
		Function: FunctionCall{Name: "get_weather", Arguments: `"Paris"}`},
	})
	require.True(t, ready)
	assert.Equal(t, `{"city":"Paris"}`, snapshot.Function.Arguments,
		"Arguments buffered before the identity arrived must be preserved")
}

func TestAccumulatorIndexIsolation(t *testing.T) {
	acc := NewToolCallAccumulator()

	acc.Apply(ToolCall{Index: 0, ID: "call_a", Type: ToolTypeFunction, Function: FunctionCall{Name: "first"}})
	acc.Apply(ToolCall{Index: 1, ID: "call_b", Type: ToolTypeFunction, Function: FunctionCall{Name: "second"}})

	// Interleaved fragments must land on their own calls.
	acc.Apply(ToolCall{Index: 0, Function: FunctionCall{Arguments: `{"a"`}})
	acc.Apply(ToolCall{Index: 1, Function: FunctionCall{Arguments: `{"b"`}})
	acc.Apply(ToolCall{Index: 0, Function: FunctionCall{Arguments: `:1}`}})
	snapshot, ready := acc.Apply(ToolCall{Index: 1, Function: FunctionCall{Arguments: `:2}`}})

	require.True(t, ready)
	assert.Equal(t, `{"b":2}`, snapshot.Function.Arguments)

	calls := acc.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, `{"a":1}`, calls[0].Function.Arguments)
	assert.Equal(t, `{"b":2}`, calls[1].Function.Arguments)
}

func TestAccumulatorIdentityFirstWriterWins(t *testing.T) {
	acc := NewToolCallAccumulator()

	acc.Apply(ToolCall{Index: 0, ID: "call_1", Type: ToolTypeFunction, Function: FunctionCall{Name: "get_weather"}})
	snapshot, ready := acc.Apply(ToolCall{Index: 0, ID: "other", Function: FunctionCall{Name: "something_else"}})

	require.True(t, ready)
	assert.Equal(t, "call_1", snapshot.ID, "A later id must not overwrite the first one")
	assert.Equal(t, "get_weather", snapshot.Function.Name)
}

func TestAccumulatorSnapshotsDoNotAlias(t *testing.T) {
	acc := NewToolCallAccumulator()

	first, ready := acc.Apply(ToolCall{Index: 0, ID: "call_1", Type: ToolTypeFunction, Function: FunctionCall{Name: "get_weather"}})
	require.True(t, ready)
	first.Function.Arguments = "tampered"

	second, ready := acc.Apply(ToolCall{Index: 0, Function: FunctionCall{Arguments: `{}`}})
	require.True(t, ready)
	assert.Equal(t, `{}`, second.Function.Arguments,
		"Mutating a returned snapshot must not touch internal state")
}

func TestAccumulatorCallsSortedByIndex(t *testing.T) {
	acc := NewToolCallAccumulator()

	acc.Apply(ToolCall{Index: 2, ID: "call_c", Type: ToolTypeFunction, Function: FunctionCall{Name: "third"}})
	acc.Apply(ToolCall{Index: 0, ID: "call_a", Type: ToolTypeFunction, Function: FunctionCall{Name: "first"}})
	acc.Apply(ToolCall{Index: 1, Function: FunctionCall{Arguments: `{`}}) // never completes

	calls := acc.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "call_a", calls[0].ID)
	assert.Equal(t, "call_c", calls[1].ID)
}
