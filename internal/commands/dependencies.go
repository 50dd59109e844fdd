package commands

import (
	"context"
	"os"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/eacsecretariat/eacassist/internal/api"
	"github.com/eacsecretariat/eacassist/internal/config"
	"github.com/eacsecretariat/eacassist/internal/models"
	"github.com/eacsecretariat/eacassist/internal/render"
	"github.com/eacsecretariat/eacassist/internal/session"
	"github.com/eacsecretariat/eacassist/internal/tui"
)

// BackendClient is the backend surface the commands need
type BackendClient interface {
	api.Backend
	RefreshStatus(ctx context.Context) (*models.RefreshResponse, error)
}

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(ctx context.Context, ctrl *session.Controller, opts render.Options) error
}

// Dependencies holds the external dependencies for the commands.
type Dependencies struct {
	// LoadConfig reads the config file and environment overrides.
	LoadConfig func() (config.Config, error)

	// NewBackend builds the backend client for a validated configuration.
	NewBackend func(cfg config.Config) (BackendClient, error)

	// NewLogger builds the diagnostics logger. toFile is set for TUI sessions.
	NewLogger func(cfg config.Config, toFile bool) (*zap.Logger, error)

	// TUI is the terminal user interface.
	TUI TUIInterface

	// Clipboard copies text to the system clipboard.
	Clipboard func(text string) error

	// StdoutIsTTY reports whether answers go to a terminal.
	StdoutIsTTY func() bool

	// StdinIsPiped reports whether a query is being piped in.
	StdinIsPiped func() bool
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(ctx context.Context, ctrl *session.Controller, opts render.Options) error {
	return tui.RunChat(ctx, ctrl, opts)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		LoadConfig:   config.LoadConfig,
		NewBackend:   newBackend,
		NewLogger:    newLogger,
		TUI:          &DefaultTUI{},
		Clipboard:    clipboard.WriteAll,
		StdoutIsTTY:  isStdoutTTY,
		StdinIsPiped: isStdinPiped,
	}
}

func newBackend(cfg config.Config) (BackendClient, error) {
	return api.NewClient(cfg.APIURL,
		api.WithTimeout(cfg.Timeout()),
		api.WithUserAgent(models.DefaultUserAgent+" ("+Version+")"),
	)
}

// newLogger builds a production zap logger. TUI sessions log to a file at info;
// one-shot commands log errors to stderr.
func newLogger(cfg config.Config, toFile bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)

	if toFile {
		path, err := config.GetLogPath(cfg)
		if err != nil {
			return nil, err
		}
		zcfg.OutputPaths = []string{path}
		zcfg.ErrorOutputPaths = []string{path}
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	if cfg.Verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	return zcfg.Build()
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func isStdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
