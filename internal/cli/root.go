// Package cli implements the parlance command line interface.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/parlancehq/parlance/internal/config"
)

type rootOptions struct {
	configFile string
	verbose    bool
}

// NewRootCmd builds the parlance command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "parlance",
		Short: "Talk to any supported LLM chat API through one interface",
		Long: "parlance sends chat requests to OpenAI, Anthropic, Google, DeepSeek or\n" +
			"Ollama through one canonical request model, streaming responses and\n" +
			"assembled tool calls back to the terminal.",
		SilenceUsage: true,
	}

	cobra.OnInitialize(func() {
		config.Init(opts.configFile)
	})

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default: ./parlance.yaml)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log request details to stderr")
	flags.Bool("debug", false, "dump the exchange to debug.yaml")
	cobra.CheckErr(viper.BindPFlag("debug", flags.Lookup("debug")))

	root.AddCommand(newChatCmd(opts))
	root.AddCommand(newVendorsCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// newLogger builds the CLI logger. Without -v only warnings and errors show,
// so log lines never interleave with streamed output in normal use.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
