package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRefreshCmd(deps *Dependencies, gopts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Ask the backend to rebuild its knowledge base",
		Long: `Send POST /refresh to the assistant backend and print the status it reports.

The chat session does this on its own when it starts; use this command to
trigger a rebuild without opening a chat.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh(cmd, deps, gopts)
		},
	}
}

func runRefresh(cmd *cobra.Command, deps *Dependencies, gopts *globalOptions) error {
	cfg, err := resolveConfig(cmd, deps, gopts)
	if err != nil {
		return err
	}

	logger, err := deps.NewLogger(cfg, false)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	backend, err := deps.NewBackend(cfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	resp, err := backend.RefreshStatus(cmd.Context())
	if err != nil {
		logger.Error("refresh failed", zap.Error(err))
		return fmt.Errorf("refresh failed: %w", err)
	}

	status := resp.Status
	if status == "" {
		status = "accepted"
	}

	if deps.StdoutIsTTY != nil && deps.StdoutIsTTY() {
		fmt.Fprintln(cmd.OutOrStdout(), lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ "+status))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), status)
	}
	return nil
}
