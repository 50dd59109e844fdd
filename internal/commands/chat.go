package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eacsecretariat/eacassist/internal/render"
)

func newChatCmd(deps *Dependencies, gopts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with the EAC Digital Assistant.

The transcript keeps every question and answer of the session.
Type 'exit', 'quit', or press Ctrl+C to end the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, deps, gopts)
		},
	}
}

func runChat(cmd *cobra.Command, deps *Dependencies, gopts *globalOptions) error {
	cfg, err := resolveConfig(cmd, deps, gopts)
	if err != nil {
		return err
	}

	logger, err := deps.NewLogger(cfg, true)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctrl, err := newController(deps, cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("chat session starting",
		zap.String("api_url", cfg.APIURL),
		zap.String("skin", ctrl.Skin().Name),
	)

	// RunChat closes the controller
	return deps.TUI.RunChat(cmd.Context(), ctrl, render.OptionsFromConfig(cfg))
}
