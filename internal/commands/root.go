// Package commands provides CLI commands for eacassist.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eacsecretariat/eacassist/internal/config"
	"github.com/eacsecretariat/eacassist/internal/models"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// globalOptions holds the persistent flags shared by every command
type globalOptions struct {
	apiURL  string
	skin    string
	verbose bool
}

// queryOptions holds the one-shot flags of the root command
type queryOptions struct {
	output string
	file   string
}

// NewRootCmd builds the command tree
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}

	gopts := &globalOptions{}
	qopts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "eacassist [question]",
		Short: "EAC Digital Assistant in your terminal",
		Long: `eacassist is a terminal client for the EAC Digital Assistant. It sends your
questions to the assistant backend and shows the answers with their source.

Examples:
  eacassist                                 Start interactive chat
  eacassist "Where is the EAC headquarters?"
  eacassist -f question.txt                 Read the question from a file
  echo "Who are the members?" | eacassist   Read the question from stdin
  eacassist "What is the motto?" -o a.md    Save the answer to a file
  eacassist refresh                         Ask the backend to rebuild its knowledge base
  eacassist config set api_url https://assistant.example.org`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(cmd.OutOrStdout(), "eacassist %s (built %s)\n", Version, BuildTime)
				return nil
			}

			question, ok, err := readQuestion(cmd, deps, qopts, args)
			if err != nil {
				return err
			}
			if !ok {
				return runChat(cmd, deps, gopts)
			}
			return runQuery(cmd, deps, gopts, qopts, question)
		},
	}

	cmd.PersistentFlags().StringVar(&gopts.apiURL, "api-url", "", "Backend base URL (overrides config and EAC_API_URL)")
	cmd.PersistentFlags().StringVar(&gopts.skin, "skin", "", fmt.Sprintf("Branding skin (%v)", models.SkinNames()))
	cmd.PersistentFlags().BoolVar(&gopts.verbose, "verbose", false, "Enable debug logging")
	cmd.Flags().StringVarP(&qopts.output, "output", "o", "", "Save answer to file")
	cmd.Flags().StringVarP(&qopts.file, "file", "f", "", "Read question from file")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(newChatCmd(deps, gopts))
	cmd.AddCommand(newRefreshCmd(deps, gopts))
	cmd.AddCommand(NewConfigCmd(deps))
	cmd.AddCommand(newStubBackendCmd(deps, gopts))

	return cmd
}

// readQuestion picks the one-shot question from -f, stdin, or the positional argument
func readQuestion(cmd *cobra.Command, deps *Dependencies, qopts *queryOptions, args []string) (string, bool, error) {
	if qopts.file != "" {
		data, err := os.ReadFile(qopts.file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}

	if deps.StdinIsPiped != nil && deps.StdinIsPiped() {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), true, nil
	}

	return "", false, nil
}

// resolveConfig loads the configuration, applies flags, and validates it
func resolveConfig(cmd *cobra.Command, deps *Dependencies, gopts *globalOptions) (config.Config, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return cfg, err
	}

	if cmd.Flags().Changed("api-url") {
		cfg.APIURL = gopts.apiURL
	}
	if gopts.skin != "" {
		cfg.Skin = gopts.skin
	}
	if gopts.verbose {
		cfg.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd(NewDependencies()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Error"))
		stop()
		os.Exit(1)
	}
}
