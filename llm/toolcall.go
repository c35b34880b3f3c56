package llm

// ToolTypeFunction is the only call type any supported vendor defines today.
const ToolTypeFunction = "function"

type FunctionCall struct {
	// Name of the function the model wants to call.
	Name string
	// Arguments is the raw argument payload. During streaming it grows by
	// concatenating fragments in arrival order; it is expected to parse as
	// JSON once the call is complete, but it is never parsed here.
	Arguments string
}

type ToolCall struct {
	// ID is the vendor-assigned call identifier. It may be absent on
	// individual stream fragments but is always set on a complete call.
	ID string
	// Type of the call, currently always ToolTypeFunction.
	Type string
	// Function holds the call target and its accumulated arguments.
	Function FunctionCall
	// Index is the call's position among concurrent calls in one response.
	// It keys streaming accumulation; non-streaming responses leave it 0.
	Index int
}

// Complete reports whether the call has every structurally required field.
// Argument fragments may still arrive for a complete call.
func (t ToolCall) Complete() bool {
	return t.ID != "" && t.Type != "" && t.Function.Name != ""
}
