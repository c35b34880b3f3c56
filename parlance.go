// Package parlance talks to several LLM chat APIs through one canonical
// request/response model. Pick a vendor, build a client, and send chat
// requests without caring which wire format, auth scheme or streaming event
// taxonomy the vendor uses underneath.
//
// The heavy lifting lives in the llm package and its vendor subpackages;
// this package just names the supported vendors and constructs a ready
// client for each one.
package parlance

import (
	"fmt"
	"strings"

	"github.com/parlancehq/parlance/llm"
	"github.com/parlancehq/parlance/llm/anthropic"
	"github.com/parlancehq/parlance/llm/google"
	"github.com/parlancehq/parlance/llm/openai"
)

// Vendor identifies one supported chat API backend.
type Vendor string

const (
	OpenAI    Vendor = "openai"
	Anthropic Vendor = "anthropic"
	Google    Vendor = "google"
	DeepSeek  Vendor = "deepseek"
	Ollama    Vendor = "ollama"
)

const (
	deepseekBaseURL = "https://api.deepseek.com/v1"
	ollamaBaseURL   = "http://localhost:11434/v1"
)

// Vendors lists every supported vendor.
func Vendors() []Vendor {
	return []Vendor{OpenAI, Anthropic, Google, DeepSeek, Ollama}
}

// ParseVendor resolves a vendor name, accepting a couple of common aliases.
func ParseVendor(name string) (Vendor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "openai":
		return OpenAI, nil
	case "anthropic", "claude":
		return Anthropic, nil
	case "google", "gemini":
		return Google, nil
	case "deepseek":
		return DeepSeek, nil
	case "ollama":
		return Ollama, nil
	default:
		names := make([]string, 0, len(Vendors()))
		for _, v := range Vendors() {
			names = append(names, string(v))
		}
		return "", fmt.Errorf("unknown vendor %q (expected one of %s)", name, strings.Join(names, ", "))
	}
}

// DefaultModel returns a sensible current model for the vendor, for callers
// that don't want to pick one themselves.
func (v Vendor) DefaultModel() string {
	switch v {
	case OpenAI:
		return "gpt-4o"
	case Anthropic:
		return "claude-sonnet-4-0"
	case Google:
		return "gemini-2.0-flash"
	case DeepSeek:
		return "deepseek-chat"
	case Ollama:
		return "llama3.2"
	default:
		return ""
	}
}

// New returns a client for the given vendor. DeepSeek and Ollama speak the
// OpenAI wire format, so they reuse that codec pointed at their own hosts;
// Ollama normally runs without a key, in which case no auth header is sent.
func New(vendor Vendor, apiKey string, opts ...llm.ClientOption) (*llm.Client, error) {
	switch vendor {
	case OpenAI:
		return llm.NewClient(openai.New(apiKey), opts...), nil
	case Anthropic:
		return llm.NewClient(anthropic.New(apiKey), opts...), nil
	case Google:
		return llm.NewClient(google.New(apiKey), opts...), nil
	case DeepSeek:
		codec := openai.New(apiKey,
			openai.WithBaseURL(deepseekBaseURL),
			openai.WithVendorName(string(DeepSeek)),
			openai.WithoutImages(),
		)
		return llm.NewClient(codec, opts...), nil
	case Ollama:
		codec := openai.New(apiKey,
			openai.WithBaseURL(ollamaBaseURL),
			openai.WithVendorName(string(Ollama)),
			openai.WithoutImages(),
		)
		return llm.NewClient(codec, opts...), nil
	default:
		return nil, fmt.Errorf("unknown vendor %q", vendor)
	}
}
