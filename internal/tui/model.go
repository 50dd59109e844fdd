package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/eacsecretariat/eacassist/internal/models"
	"github.com/eacsecretariat/eacassist/internal/render"
	"github.com/eacsecretariat/eacassist/internal/session"
	"github.com/eacsecretariat/eacassist/internal/transcript"
)

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI
type (
	// sessionReadyMsg follows the controller's Initialize
	sessionReadyMsg struct{}

	// replyMsg carries the bot message appended when an exchange completes
	replyMsg struct {
		reply models.Message
		err   error
	}
)

// copyToClipboard and writeTranscript are swapped out in tests
var (
	copyToClipboard = clipboard.WriteAll
	writeTranscript = func(messages []models.Message, skin models.Skin) (string, error) {
		dir, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return transcript.WriteFile(dir, messages, skin, transcript.DefaultOptions(), time.Now())
	}
)

// ChatSessionInterface is the controller surface the TUI drives
type ChatSessionInterface interface {
	Initialize(ctx context.Context)
	Begin(text string) (*session.Exchange, error)
	Messages() []models.Message
	LastAnswer() (models.Message, bool)
	Waiting() bool
	SetDraft(text string)
	Skin() models.Skin
}

// Model represents the TUI state
type Model struct {
	ctx        context.Context
	session    ChatSessionInterface
	skin       models.Skin
	renderOpts render.Options

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	ready          bool
	rendered       int // messages projected into the viewport
	animationFrame int
	notice         string
	err            error

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a new chat TUI model over a session controller
func NewChatModel(ctx context.Context, sess ChatSessionInterface, renderOpts render.Options) Model {
	skin := sess.Skin()
	ApplySkin(skin)

	ta := textarea.New()
	ta.Placeholder = skin.Placeholder
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	if ctx == nil {
		ctx = context.Background()
	}

	return Model{
		ctx:        ctx,
		session:    sess,
		skin:       skin,
		renderOpts: renderOpts,
		textarea:   ta,
		spinner:    s,
	}
}

// Init seeds the transcript and fires the background refresh
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.initSession(),
	)
}

func (m Model) initSession() tea.Cmd {
	sess, ctx := m.session, m.ctx
	return func() tea.Msg {
		sess.Initialize(ctx)
		return sessionReadyMsg{}
	}
}

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		inputHeight := 7
		statusHeight := 2
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4
		if contentWidth < 20 {
			contentWidth = 20
		}

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.viewport.KeyMap = scrollKeys()
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()
		m.viewport.GotoBottom()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+y":
			m.copyLastAnswer()
			return m, nil

		case "ctrl+s":
			m.saveTranscript()
			return m, nil

		case "enter":
			return m.submit()
		}

	case sessionReadyMsg:
		m.syncTranscript()

	case replyMsg:
		m.err = msg.err
		m.syncTranscript()

	case spinner.TickMsg:
		if m.session.Waiting() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.session.Waiting() {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// The input stays editable while a reply is pending; only sending is disabled.
	if _, ok := msg.(tea.KeyMsg); ok {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
		m.session.SetDraft(m.textarea.Value())
		m.notice = ""
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// scrollKeys limits viewport scrolling to keys the textarea does not type
func scrollKeys() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		Up:       key.NewBinding(key.WithKeys("up")),
		Down:     key.NewBinding(key.WithKeys("down")),
	}
}

// canSend reports whether Enter would submit the current input
func (m Model) canSend() bool {
	return !m.session.Waiting() && strings.TrimSpace(m.textarea.Value()) != ""
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if !m.canSend() {
		return m, nil
	}

	input := m.textarea.Value()
	switch strings.TrimSpace(input) {
	case "exit", "quit", "/exit", "/quit":
		return m, tea.Quit
	}

	ex, err := m.session.Begin(input)
	if err != nil {
		return m, nil
	}

	m.textarea.Reset()
	m.notice = ""
	m.err = nil
	m.animationFrame = 0
	m.syncTranscript()

	return m, tea.Batch(
		m.complete(ex),
		m.spinner.Tick,
		animationTick(),
	)
}

// complete runs the backend call off the update loop
func (m Model) complete(ex *session.Exchange) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		reply := ex.Complete(ctx)
		return replyMsg{reply: reply, err: ex.Err()}
	}
}

func (m *Model) copyLastAnswer() {
	last, ok := m.session.LastAnswer()
	if !ok {
		return
	}
	if err := copyToClipboard(last.Content); err != nil {
		m.notice = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	m.notice = "Answer copied to clipboard"
}

func (m *Model) saveTranscript() {
	path, err := writeTranscript(m.session.Messages(), m.skin)
	if err != nil {
		m.notice = fmt.Sprintf("Save failed: %v", err)
		return
	}
	m.notice = "Transcript saved to " + path
}

// syncTranscript re-projects the transcript and scrolls to the newest message
func (m *Model) syncTranscript() {
	if !m.ready {
		return
	}
	m.updateViewport()
	m.viewport.GotoBottom()
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.viewport.Width

	// Header
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render(m.skin.Title),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.skin.Tagline),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	// Messages
	messagesContent := m.viewport.View()
	if m.rendered == 0 {
		messagesContent = m.renderWelcome()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	// Input
	label := inputLabelStyle.Render("You")
	if m.session.Waiting() {
		label = m.renderLoadingAnimation()
	}
	inputContent := lipgloss.JoinVertical(lipgloss.Left, label, m.textarea.View())
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	// Status
	sections = append(sections, m.renderStatusBar(contentWidth))
	if m.skin.Footer != "" {
		sections = append(sections, footerStyle.Width(contentWidth).Align(lipgloss.Center).Render(m.skin.Footer))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderWelcome() string {
	return welcomeTitleStyle.Render(m.skin.Title) + "\n" + hintStyle.Render("Connecting...")
}

// renderLoadingAnimation draws the pending-reply indicator in the skin colors
func (m Model) renderLoadingAnimation() string {
	frame := m.animationFrame

	var dots strings.Builder
	for i := range loadingColors {
		glyph := "○"
		if (frame/3)%len(loadingColors) == i {
			glyph = "●"
		}
		dots.WriteString(lipgloss.NewStyle().Foreground(loadingColors[i]).Render(glyph))
	}

	name := m.skin.AssistantName
	if name == "" {
		name = "Assistant"
	}
	text := lipgloss.NewStyle().Foreground(colorText).Render(" " + name + " is typing ")

	return fmt.Sprintf("%s%s%s", m.spinner.View(), text, dots.String())
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	send := statusKeyStyle.Render("Enter") + statusDescStyle.Render(" Send")
	if m.session.Waiting() {
		send = statusOffStyle.Render("Enter Send") + statusDescStyle.Render(" (waiting)")
	}

	items := []string{
		send,
		statusKeyStyle.Render("Ctrl+Y") + statusDescStyle.Render(" Copy answer"),
		statusKeyStyle.Render("Ctrl+S") + statusDescStyle.Render(" Save"),
		statusKeyStyle.Render("↑↓") + statusDescStyle.Render(" Scroll"),
		statusKeyStyle.Render("Esc") + statusDescStyle.Render(" Quit"),
	}

	bar := strings.Join(items, "  │  ")
	switch {
	case m.notice != "":
		bar = noticeStyle.Render(m.notice) + "  │  " + bar
	case m.err != nil:
		bar = errorStyle.Render("offline") + "  │  " + bar
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// updateViewport projects the transcript into the viewport
func (m *Model) updateViewport() {
	messages := m.session.Messages()
	m.rendered = len(messages)
	m.viewport.SetContent(m.renderTranscript(messages))
}

func (m Model) renderTranscript(messages []models.Message) string {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 8
	if bubbleWidth < 16 {
		bubbleWidth = 16
	}

	for i, msg := range messages {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.IsUser() {
			label := userLabelStyle.Render("You")
			bubble := userBubbleStyle.Width(bubbleWidth).Render(msg.Content)
			content.WriteString(label + "\n" + bubble)
		} else {
			label := botLabelStyle.Render(m.skin.AssistantName)
			body := render.Answer(msg.Content, m.renderOpts.WithWidth(bubbleWidth-4))
			content.WriteString(label + "\n" + botBubbleStyle.Width(bubbleWidth).Render(body))
			if line := render.SourceLine(msg.Source); line != "" {
				content.WriteString("\n" + sourceStyle.Render(line))
			}
		}
		content.WriteString("\n")
	}

	return content.String()
}

// RunChat starts the chat TUI and closes the controller when it exits
func RunChat(ctx context.Context, ctrl *session.Controller, renderOpts render.Options) error {
	defer ctrl.Close()

	// Seed the greeting before any key can reach the model
	ctrl.Initialize(ctx)

	m := NewChatModel(ctx, ctrl, renderOpts)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}
