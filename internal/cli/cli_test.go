package cli

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVendorsCommand(t *testing.T) {
	out, err := execute(t, "vendors")
	require.NoError(t, err)
	assert.Contains(t, out, "openai")
	assert.Contains(t, out, "anthropic")
	assert.Contains(t, out, "ollama")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}

func TestChatOneShot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()
	t.Setenv("OPENAI_API_KEY", "sk-test")

	out, err := execute(t, "chat",
		"--vendor", "openai",
		"--base-url", server.URL,
		"--prompt", "say hello",
		"--no-stream",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "hello")
}

func TestChatOneShotStreaming(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, data := range []string{
			`{"choices":[{"delta":{"content":"He"}}]}`,
			`{"choices":[{"delta":{"content":"llo"}}]}`,
			`{"choices":[{"delta":{},"finish_reason":"stop"}]}`,
			`[DONE]`,
		} {
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}))
	defer server.Close()
	t.Setenv("OPENAI_API_KEY", "sk-test")

	out, err := execute(t, "chat",
		"--vendor", "openai",
		"--base-url", server.URL,
		"--prompt", "say hello",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Hello")
}

func TestChatUnknownVendor(t *testing.T) {
	_, err := execute(t, "chat", "--vendor", "grok", "--prompt", "hi")
	require.Error(t, err)
}

func TestChatMissingAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	_, err := execute(t, "chat", "--vendor", "anthropic", "--prompt", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}
