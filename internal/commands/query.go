package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/eacsecretariat/eacassist/internal/config"
	apierrors "github.com/eacsecretariat/eacassist/internal/errors"
	"github.com/eacsecretariat/eacassist/internal/models"
	"github.com/eacsecretariat/eacassist/internal/render"
	"github.com/eacsecretariat/eacassist/internal/session"
)

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorError    = lipgloss.Color("#f7768e")
)

// spinner handles the animated loading indicator on stderr
type spinner struct {
	out     io.Writer
	message string
	colors  []lipgloss.Color
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool
}

func newSpinner(out io.Writer, message string, skin models.Skin) *spinner {
	colors := make([]lipgloss.Color, 0, len(skin.Loading))
	for _, c := range skin.Loading {
		colors = append(colors, lipgloss.Color(c))
	}
	if len(colors) == 0 {
		colors = append(colors, colorText)
	}

	return &spinner{
		out:     out,
		message: message,
		colors:  colors,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

	spinColor := s.colors[s.frame%len(s.colors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[s.frame%len(chars)])

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dots.WriteString(lipgloss.NewStyle().Foreground(s.colors[i%len(s.colors)]).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)
	fmt.Fprintf(s.out, "\r\033[K%s %s %s", spinnerChar, msg, dots.String())
}

func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(s.out, "%s %s\n", checkmark, msg)
}

func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// newController wires a session controller to the configured backend
func newController(deps *Dependencies, cfg config.Config, logger *zap.Logger) (*session.Controller, error) {
	skin, err := models.SkinFromName(cfg.Skin)
	if err != nil {
		return nil, err
	}

	backend, err := deps.NewBackend(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return session.NewController(backend,
		session.WithSkin(skin),
		session.WithLogger(logger),
	)
}

// runQuery sends a single question and prints the answer.
// A failed exchange still prints the connectivity message, then returns the cause.
func runQuery(cmd *cobra.Command, deps *Dependencies, gopts *globalOptions, qopts *queryOptions, question string) error {
	if strings.TrimSpace(question) == "" {
		return apierrors.ErrEmptyInput
	}

	cfg, err := resolveConfig(cmd, deps, gopts)
	if err != nil {
		return err
	}

	logger, err := deps.NewLogger(cfg, false)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctrl, err := newController(deps, cfg, logger)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	decorated := deps.StdoutIsTTY != nil && deps.StdoutIsTTY()

	ex, err := ctrl.Begin(question)
	if err != nil {
		return err
	}

	var spin *spinner
	if decorated {
		spin = newSpinner(stderr, "Asking "+ctrl.Skin().AssistantName, ctrl.Skin())
		spin.start()
	}

	start := time.Now()
	reply := ex.Complete(cmd.Context())
	logger.Debug("query finished", zap.Duration("took", time.Since(start)))

	if spin != nil {
		if ex.Err() != nil {
			spin.stopWithError()
		} else {
			spin.stopWithSuccess("Done")
		}
	}

	text := formatPlainAnswer(reply)

	if qopts.output != "" {
		if err := os.WriteFile(qopts.output, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if decorated {
			fmt.Fprintln(stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ Answer saved to %s", qopts.output)))
		}
	} else if decorated {
		fmt.Fprintln(stdout, formatDecoratedAnswer(reply, ctrl.Skin(), render.OptionsFromConfig(cfg)))
	} else {
		fmt.Fprint(stdout, text)
	}

	if cfg.CopyToClipboard && ex.Err() == nil && deps.Clipboard != nil {
		if err := deps.Clipboard(reply.Content); err != nil {
			fmt.Fprintln(stderr, lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		} else if decorated {
			fmt.Fprintln(stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
		}
	}

	if err := ex.Err(); err != nil {
		return fmt.Errorf("chat request failed: %w", err)
	}
	return nil
}

// formatPlainAnswer is the undecorated answer with its citation line
func formatPlainAnswer(reply models.Message) string {
	var sb strings.Builder
	sb.WriteString(reply.Content)
	if !strings.HasSuffix(reply.Content, "\n") {
		sb.WriteString("\n")
	}
	if line := render.SourceLine(reply.Source); line != "" {
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

// formatDecoratedAnswer renders the answer the way the chat TUI shows it
func formatDecoratedAnswer(reply models.Message, skin models.Skin, opts render.Options) string {
	bubbleWidth := getTerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}

	primary := lipgloss.Color(skin.Primary)
	label := lipgloss.NewStyle().Foreground(primary).Bold(true).Render(skin.AssistantName)
	bubble := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(primary).
		Foreground(colorText).
		Padding(0, 1).
		Width(bubbleWidth).
		Render(render.Answer(reply.Content, opts.WithWidth(bubbleWidth-4)))

	out := label + "\n" + bubble
	if line := render.SourceLine(reply.Source); line != "" {
		out += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color(skin.Accent)).Italic(true).PaddingLeft(2).Render(line)
	}
	return out
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) && apiErr.Body != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(apiErr.Body, "\n", "\n  "))))
		return sb.String()
	}

	switch {
	case errors.Is(err, apierrors.ErrUnconfigured):
		sb.WriteString(dimStyle.Render("\n  Hint: run 'eacassist config set api_url <url>' or export EAC_API_URL"))
	case errors.Is(err, apierrors.ErrEmptyInput):
		sb.WriteString(dimStyle.Render("\n  Hint: pass a question as an argument, with -f, or on stdin"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: check that the backend is running; 'eacassist stub-backend' starts a local one"))
	case apierrors.IsParseError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: the backend reply was not understood; check api_url"))
	}

	return sb.String()
}
