package commands

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/eacsecretariat/eacassist/internal/config"
	"github.com/eacsecretariat/eacassist/internal/models"
	"github.com/eacsecretariat/eacassist/internal/render"
	"github.com/eacsecretariat/eacassist/internal/session"
)

// mockBackend is a simple BackendClient for testing
type mockBackend struct {
	mu        sync.Mutex
	queries   []string
	refreshes int

	chatFunc    func(query string) (*models.ChatResponse, error)
	refreshFunc func() (*models.RefreshResponse, error)
}

func (m *mockBackend) Chat(ctx context.Context, query string) (*models.ChatResponse, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()

	if m.chatFunc != nil {
		return m.chatFunc(query)
	}
	return &models.ChatResponse{Answer: "ok"}, nil
}

func (m *mockBackend) Refresh(ctx context.Context) error {
	_, err := m.RefreshStatus(ctx)
	return err
}

func (m *mockBackend) RefreshStatus(ctx context.Context) (*models.RefreshResponse, error) {
	m.mu.Lock()
	m.refreshes++
	m.mu.Unlock()

	if m.refreshFunc != nil {
		return m.refreshFunc()
	}
	return &models.RefreshResponse{Status: "Refresh started"}, nil
}

func (m *mockBackend) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// mockTUI records the controller it was asked to run
type mockTUI struct {
	ctrl *session.Controller
	opts render.Options
	err  error
}

func (m *mockTUI) RunChat(ctx context.Context, ctrl *session.Controller, opts render.Options) error {
	m.ctrl = ctrl
	m.opts = opts
	ctrl.Close()
	return m.err
}

// testEnv bundles fake dependencies and what they observed
type testEnv struct {
	deps    *Dependencies
	backend *mockBackend
	tui     *mockTUI
	cfg     config.Config

	gotCfg     *config.Config
	logToFile  bool
	copied     string
	tty        bool
	piped      bool
	backendErr error
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		backend: &mockBackend{},
		tui:     &mockTUI{},
		cfg:     config.DefaultConfig(),
	}

	env.deps = &Dependencies{
		LoadConfig: func() (config.Config, error) {
			return env.cfg, nil
		},
		NewBackend: func(cfg config.Config) (BackendClient, error) {
			c := cfg
			env.gotCfg = &c
			if env.backendErr != nil {
				return nil, env.backendErr
			}
			return env.backend, nil
		},
		NewLogger: func(cfg config.Config, toFile bool) (*zap.Logger, error) {
			env.logToFile = toFile
			return zap.NewNop(), nil
		},
		TUI: env.tui,
		Clipboard: func(text string) error {
			env.copied = text
			return nil
		},
		StdoutIsTTY:  func() bool { return env.tty },
		StdinIsPiped: func() bool { return env.piped },
	}

	return env
}

// run executes the root command and returns stdout, stderr and the error
func (env *testEnv) run(stdin io.Reader, args ...string) (string, string, error) {
	cmd := NewRootCmd(env.deps)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	cmd.SetIn(stdin)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
