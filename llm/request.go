package llm

// ToolChoice directs whether the model may, must, or must not call tools.
// The zero value leaves the decision to the vendor's default.
type ToolChoice string

const (
	ToolChoiceAuto     ToolChoice = "auto"
	ToolChoiceNone     ToolChoice = "none"
	ToolChoiceRequired ToolChoice = "required"
)

// ChatRequest is the vendor-independent request. Nil pointer fields mean
// "vendor default"; codecs only serialize what is set.
type ChatRequest struct {
	Model      string
	Messages   []Message
	Tools      []ToolDefinition
	ToolChoice ToolChoice

	Temperature      *float64
	TopP             *float64
	MaxTokens        *int
	Stop             []string
	PresencePenalty  *float64
	FrequencyPenalty *float64
	Seed             *int
}

// RequestOption mutates a ChatRequest during construction.
type RequestOption func(*ChatRequest)

// NewRequest builds a ChatRequest for the given model and messages.
func NewRequest(model string, messages []Message, opts ...RequestOption) *ChatRequest {
	req := &ChatRequest{Model: model, Messages: messages}
	for _, opt := range opts {
		opt(req)
	}
	return req
}

// WithTools makes the given tool definitions available to the model.
func WithTools(tools ...ToolDefinition) RequestOption {
	return func(r *ChatRequest) {
		r.Tools = append(r.Tools, tools...)
	}
}

// WithToolChoice sets the tool-choice directive.
func WithToolChoice(choice ToolChoice) RequestOption {
	return func(r *ChatRequest) {
		r.ToolChoice = choice
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(v float64) RequestOption {
	return func(r *ChatRequest) {
		r.Temperature = &v
	}
}

// WithTopP sets the nucleus sampling cutoff.
func WithTopP(v float64) RequestOption {
	return func(r *ChatRequest) {
		r.TopP = &v
	}
}

// WithMaxTokens caps the number of generated tokens.
func WithMaxTokens(n int) RequestOption {
	return func(r *ChatRequest) {
		r.MaxTokens = &n
	}
}

// WithStop adds stop sequences.
func WithStop(sequences ...string) RequestOption {
	return func(r *ChatRequest) {
		r.Stop = append(r.Stop, sequences...)
	}
}

// WithPresencePenalty sets the presence penalty.
func WithPresencePenalty(v float64) RequestOption {
	return func(r *ChatRequest) {
		r.PresencePenalty = &v
	}
}

// WithFrequencyPenalty sets the frequency penalty.
func WithFrequencyPenalty(v float64) RequestOption {
	return func(r *ChatRequest) {
		r.FrequencyPenalty = &v
	}
}

// WithSeed requests deterministic sampling where the vendor supports it.
func WithSeed(seed int) RequestOption {
	return func(r *ChatRequest) {
		r.Seed = &seed
	}
}
