// Package tui provides the terminal user interface for eacassist.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	apierrors "github.com/eacsecretariat/eacassist/internal/errors"
	"github.com/eacsecretariat/eacassist/internal/models"
)

// Neutral colors shared by every skin
var (
	colorBorder   = lipgloss.Color("#414868")
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#3b4261")
	colorError    = lipgloss.Color("#D21034")
)

// Skin colors (updated by ApplySkin)
var (
	colorPrimary lipgloss.Color
	colorUser    lipgloss.Color
	colorAccent  lipgloss.Color

	loadingColors []lipgloss.Color
)

// Style variables (rebuilt when the skin changes)
var (
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	hintStyle     lipgloss.Style

	messagesAreaStyle lipgloss.Style

	userBubbleStyle lipgloss.Style
	userLabelStyle  lipgloss.Style

	botBubbleStyle lipgloss.Style
	botLabelStyle  lipgloss.Style
	sourceStyle    lipgloss.Style

	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style

	loadingStyle lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style
	statusOffStyle  lipgloss.Style

	footerStyle lipgloss.Style
	noticeStyle lipgloss.Style
	errorStyle  lipgloss.Style

	welcomeTitleStyle lipgloss.Style
)

func init() {
	ApplySkin(models.DefaultSkin)
}

// ApplySkin rebuilds every style from the skin's palette
func ApplySkin(skin models.Skin) {
	colorPrimary = lipgloss.Color(skin.Primary)
	colorUser = lipgloss.Color(skin.UserColor)
	colorAccent = lipgloss.Color(skin.Accent)

	loadingColors = loadingColors[:0]
	for _, c := range skin.Loading {
		loadingColors = append(loadingColors, lipgloss.Color(c))
	}
	if len(loadingColors) == 0 {
		loadingColors = append(loadingColors, colorPrimary)
	}

	rebuildStyles()
}

func rebuildStyles() {
	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(0, 2).
		MarginBottom(1)

	titleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Italic(true)

	hintStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		Italic(true)

	messagesAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(1)

	// user messages sit on the right, bot messages on the left
	userBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorUser).
		Foreground(colorText).
		Padding(0, 1).
		MarginLeft(6)

	userLabelStyle = lipgloss.NewStyle().
		Foreground(colorUser).
		Bold(true).
		MarginLeft(6)

	botBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Foreground(colorText).
		Padding(0, 1).
		MarginRight(6)

	botLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	sourceStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Italic(true).
		PaddingLeft(2)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		MarginTop(1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(colorUser).
		Bold(true).
		MarginRight(1)

	loadingStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		MarginTop(1)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	statusOffStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		Strikethrough(true)

	footerStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Italic(true)

	noticeStyle = lipgloss.NewStyle().
		Foreground(colorAccent)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	welcomeTitleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		MarginBottom(1)
}

// FormatError returns a styled error message with a hint for known failures.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	errStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errStyle.Render(fmt.Sprintf("✗ %v", err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	switch {
	case errors.Is(err, apierrors.ErrUnconfigured):
		sb.WriteString(dimStyle.Render("\n  Hint: set api_url with 'eacassist config set api_url <url>' or export EAC_API_URL"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: check that the backend is running and reachable"))
	case apierrors.IsParseError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: the backend answered with an unexpected payload; is api_url pointing at the assistant?"))
	case apierrors.GetHTTPStatus(err) == 503:
		sb.WriteString(dimStyle.Render("\n  Hint: the backend is still starting up, try again shortly"))
	}

	return sb.String()
}
