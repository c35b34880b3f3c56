package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"sigs.k8s.io/yaml"

	"github.com/parlancehq/parlance"
	"github.com/parlancehq/parlance/internal/config"
	"github.com/parlancehq/parlance/llm"
	"github.com/parlancehq/parlance/spinner"
	"github.com/parlancehq/parlance/writer"
)

func newChatCmd(root *rootOptions) *cobra.Command {
	var (
		prompt   string
		noStream bool
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with a model, interactively or one-shot",
		Long: "Without --prompt, chat starts an interactive session; type \"exit\" or\n" +
			"press Ctrl-D to leave. Responses stream to the terminal as they are\n" +
			"generated unless --no-stream is set.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			apiKey, err := cfg.ResolveAPIKey()
			if err != nil {
				return err
			}

			opts := []llm.ClientOption{llm.WithLogger(newLogger(root.verbose))}
			if cfg.BaseURL != "" {
				opts = append(opts, llm.WithBaseURL(cfg.BaseURL))
			}
			client, err := parlance.New(parlance.Vendor(cfg.Vendor), apiKey, opts...)
			if err != nil {
				return err
			}

			session := &chatSession{
				client: client,
				model:  cfg.Model,
				stream: !noStream,
				debug:  viper.GetBool("debug"),
				out:    cmd.OutOrStdout(),
			}
			if cfg.System != "" {
				session.messages = append(session.messages, llm.SystemMessage(cfg.System))
			}

			if prompt != "" {
				return session.ask(cmd.Context(), prompt)
			}
			return session.repl(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.String("vendor", "", "vendor to talk to (openai, anthropic, google, deepseek, ollama)")
	flags.String("model", "", "model identifier (default: the vendor's default)")
	flags.String("system", "", "system prompt")
	flags.String("base-url", "", "override the vendor's API host")
	flags.StringVarP(&prompt, "prompt", "p", "", "send one prompt and exit")
	flags.BoolVar(&noStream, "no-stream", false, "wait for the complete response")
	cobra.CheckErr(viper.BindPFlag("vendor", flags.Lookup("vendor")))
	cobra.CheckErr(viper.BindPFlag("model", flags.Lookup("model")))
	cobra.CheckErr(viper.BindPFlag("system", flags.Lookup("system")))
	cobra.CheckErr(viper.BindPFlag("base_url", flags.Lookup("base-url")))
	return cmd
}

// chatSession holds one conversation. Each ask appends the user turn and the
// assistant's reply to the running message history.
type chatSession struct {
	client   *llm.Client
	model    string
	stream   bool
	debug    bool
	out      io.Writer
	messages []llm.Message
}

// repl runs the interactive loop. The liner package makes the input prompt a
// lot nicer to use, supporting arrow keys and common keyboard shortcuts.
func (s *chatSession) repl(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt("> ")
		if err != nil || input == "exit" {
			fmt.Fprintln(s.out)
			return nil
		}
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if err := s.ask(ctx, input); err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

func (s *chatSession) ask(ctx context.Context, prompt string) error {
	s.messages = append(s.messages, llm.UserMessage(llm.Text(prompt)))
	req := llm.NewRequest(s.model, s.messages)

	var resp *llm.ChatResponse
	var err error
	if s.stream {
		resp, err = s.askStreaming(ctx, req)
	} else {
		resp, err = s.client.Chat(ctx, req)
		if err == nil {
			s.render(resp)
		}
	}
	if s.debug {
		s.dumpDebug(req, resp, err)
	}
	if err != nil {
		// Drop the failed user turn so a retry doesn't send it twice.
		s.messages = s.messages[:len(s.messages)-1]
		return err
	}

	reply := llm.AssistantMessage(llm.Text(resp.Content))
	reply.ToolCalls = resp.ToolCalls
	s.messages = append(s.messages, reply)
	return nil
}

// askStreaming renders chunks as they arrive and assembles them into the
// response. Tool-call snapshots are only printed once, in their final form
// after the stream finishes.
func (s *chatSession) askStreaming(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	stream, err := s.client.ChatStream(ctx, req)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	// Spin while waiting for the first token, but only on a real terminal.
	var sp *spinner.Spinner
	if f, ok := s.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		sp = spinner.Dots1.New()
		sp.Start()
	}
	stopSpinner := func() {
		if sp != nil {
			sp.Stop()
			sp = nil
		}
	}
	defer stopSpinner()

	resp := &llm.ChatResponse{}
	calls := map[int]llm.ToolCall{}
	w := writer.New(s.out)
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch chunk.Kind {
		case llm.ChunkText:
			stopSpinner()
			resp.Content += chunk.Text
			if err := w.WriteText(chunk.Text); err != nil {
				return nil, err
			}
		case llm.ChunkToolCall:
			calls[chunk.ToolCall.Index] = *chunk.ToolCall
		case llm.ChunkUsage:
			usage := *chunk.Usage
			resp.Usage = &usage
		case llm.ChunkFinish:
			resp.FinishReason = chunk.FinishReason
		}
	}
	stopSpinner()
	if err := w.Finish(); err != nil {
		return nil, err
	}
	indexes := make([]int, 0, len(calls))
	for index := range calls {
		indexes = append(indexes, index)
	}
	slices.Sort(indexes)
	for _, index := range indexes {
		resp.ToolCalls = append(resp.ToolCalls, calls[index])
	}
	s.renderToolCalls(resp.ToolCalls)
	return resp, nil
}

func (s *chatSession) render(resp *llm.ChatResponse) {
	if resp.Content != "" {
		w := writer.New(s.out)
		_ = w.WriteText(resp.Content)
		_ = w.Finish()
	}
	s.renderToolCalls(resp.ToolCalls)
}

// renderToolCalls prints assembled calls for the user. They are never run;
// deciding what a tool call means is the caller's job, and here the caller
// is a human.
func (s *chatSession) renderToolCalls(calls []llm.ToolCall) {
	for _, call := range calls {
		fmt.Fprintf(s.out, "tool call: %s(%s)\n", call.Function.Name, call.Function.Arguments)
	}
}

// dumpDebug writes the full exchange to debug.yaml in the working directory,
// even when the request failed.
func (s *chatSession) dumpDebug(req *llm.ChatRequest, resp *llm.ChatResponse, reqErr error) {
	debugData := map[string]any{
		// Prefixed with numbers so the keys remain in this order.
		"1_vendor":   s.client.Vendor(),
		"2_request":  req,
		"3_response": resp,
	}
	if reqErr != nil {
		debugData["4_error"] = reqErr.Error()
	}
	if debugYAML, err := yaml.Marshal(debugData); err == nil {
		_ = os.WriteFile("debug.yaml", debugYAML, 0644)
	}
}
