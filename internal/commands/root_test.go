package commands

import (
	"errors"
	"strings"
	"testing"

	apierrors "github.com/eacsecretariat/eacassist/internal/errors"
	"github.com/eacsecretariat/eacassist/internal/models"
)

func TestRootCommand_Help(t *testing.T) {
	cmd := NewRootCmd(newTestEnv(t).deps)
	if cmd.Use != "eacassist [question]" {
		t.Errorf("Expected use 'eacassist [question]', got %s", cmd.Use)
	}
	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}
	if cmd.Long == "" {
		t.Error("Long description should not be empty")
	}
}

func TestRootCommand_Version(t *testing.T) {
	for _, arg := range []string{"-v", "--version"} {
		t.Run(arg, func(t *testing.T) {
			env := newTestEnv(t)
			out, _, err := env.run(nil, arg)
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if !strings.HasPrefix(out, "eacassist "+Version) {
				t.Errorf("unexpected version output %q", out)
			}
			if env.gotCfg != nil {
				t.Error("version should not build a backend")
			}
		})
	}
}

func TestRootCommand_Flags(t *testing.T) {
	cmd := NewRootCmd(newTestEnv(t).deps)

	for _, name := range []string{"api-url", "skin", "verbose"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("PersistentFlag %s not found", name)
		}
	}
	for _, name := range []string{"output", "file", "version"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("Flag %s not found", name)
		}
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCmd(newTestEnv(t).deps)

	for _, sub := range []string{"chat", "refresh", "config", "stub-backend"} {
		t.Run("subcommand "+sub, func(t *testing.T) {
			found := false
			for _, c := range cmd.Commands() {
				if c.Name() == sub {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Subcommand %s not found", sub)
			}
		})
	}
}

func TestRootCommand_TooManyArgs(t *testing.T) {
	env := newTestEnv(t)
	if _, _, err := env.run(nil, "one", "two"); err == nil {
		t.Error("expected an error for two positional arguments")
	}
}

func TestRootCommand_NoInputStartsChat(t *testing.T) {
	env := newTestEnv(t)

	if _, _, err := env.run(nil); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if env.tui.ctrl == nil {
		t.Fatal("expected the TUI to run")
	}
	if !env.logToFile {
		t.Error("chat sessions should log to a file")
	}
	if got := len(env.backend.Queries()); got != 0 {
		t.Errorf("expected no queries, got %d", got)
	}
}

func TestChatCommand(t *testing.T) {
	env := newTestEnv(t)

	if _, _, err := env.run(nil, "chat", "--skin", "assistant"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if env.tui.ctrl == nil {
		t.Fatal("expected the TUI to run")
	}
	if got := env.tui.ctrl.Skin().Name; got != models.SkinAssistant.Name {
		t.Errorf("expected skin %q, got %q", models.SkinAssistant.Name, got)
	}
	if env.tui.opts.Style == "" {
		t.Error("expected render options from config")
	}
}

func TestChatCommand_TUIError(t *testing.T) {
	env := newTestEnv(t)
	env.tui.err = errors.New("no tty")

	if _, _, err := env.run(nil, "chat"); err == nil || !strings.Contains(err.Error(), "no tty") {
		t.Errorf("expected TUI error, got %v", err)
	}
}

func TestResolveConfig(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantURL string
		wantErr error
		anyErr  bool
	}{
		{
			name:    "config value",
			args:    []string{"q"},
			wantURL: models.DefaultAPIURL,
		},
		{
			name:    "flag overrides",
			args:    []string{"--api-url", "https://assistant.example.org", "q"},
			wantURL: "https://assistant.example.org",
		},
		{
			name:    "flag on subcommand",
			args:    []string{"refresh", "--api-url", "http://10.0.0.2:8000"},
			wantURL: "http://10.0.0.2:8000",
		},
		{
			name:    "explicit empty flag",
			args:    []string{"--api-url", "", "q"},
			wantErr: apierrors.ErrUnconfigured,
		},
		{
			name:   "bad scheme",
			args:   []string{"--api-url", "ftp://example.org", "q"},
			anyErr: true,
		},
		{
			name:   "unknown skin",
			args:   []string{"--skin", "nope", "q"},
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, _, err := env.run(nil, tt.args...)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			case tt.anyErr:
				if err == nil {
					t.Fatal("expected an error")
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}

			if tt.wantErr != nil || tt.anyErr {
				if env.gotCfg != nil {
					t.Error("backend must not be built from an invalid config")
				}
				return
			}
			if env.gotCfg == nil || env.gotCfg.APIURL != tt.wantURL {
				t.Errorf("expected api url %q, got %+v", tt.wantURL, env.gotCfg)
			}
		})
	}
}

func TestResolveConfig_Verbose(t *testing.T) {
	env := newTestEnv(t)
	if _, _, err := env.run(nil, "--verbose", "hello"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if env.gotCfg == nil || !env.gotCfg.Verbose {
		t.Error("expected --verbose to reach the config")
	}
}
