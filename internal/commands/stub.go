package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eacsecretariat/eacassist/internal/config"
	"github.com/eacsecretariat/eacassist/internal/stubserver"
)

// serveStub is swapped out in tests
var serveStub = stubserver.ListenAndServe

func newStubBackendCmd(deps *Dependencies, gopts *globalOptions) *cobra.Command {
	var (
		addr   string
		warmup time.Duration
	)

	cmd := &cobra.Command{
		Use:   "stub-backend",
		Short: "Run a local backend that answers from the EAC factsheet",
		Long: `Run a local stand-in for the assistant backend. It serves POST /chat and
POST /refresh, answering factsheet questions (headquarters, members, founding,
motto, Secretary General) so the client can be tried without the real service.

With --warmup the stub answers 503 "Starting up..." for the given duration,
like a real backend that is still loading.

Point a client at it with --api-url or EAC_API_URL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return err
			}
			// The request log is the point of running the stub
			cfg.Verbose = true

			logger, err := deps.NewLogger(cfg, false)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			url := stubserver.URLFor(addr)
			if err := config.ValidateAPIURL(url); err != nil {
				return fmt.Errorf("invalid --addr %q: %w", addr, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Stub backend on %s (Ctrl+C to stop)\n", url)

			if warmup < 0 {
				return fmt.Errorf("invalid --warmup %s: must not be negative", warmup)
			}

			h := stubserver.NewHandler(stubserver.DefaultFactsheet(), logger)
			h.WarmUp(cmd.Context(), warmup)
			return serveStub(cmd.Context(), addr, h)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8000", "Listen address")
	cmd.Flags().DurationVar(&warmup, "warmup", 0, "Answer 503 for this long after start (e.g. 10s)")
	return cmd
}
