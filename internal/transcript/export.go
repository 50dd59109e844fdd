// Package transcript renders a chat session's messages for saving outside the app.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eacsecretariat/eacassist/internal/models"
)

// Format represents the format for exporting a transcript
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Options configures how a transcript is exported
type Options struct {
	Format         Format
	IncludeSources bool
	IncludeIDs     bool // message UUIDs in JSON export
}

// DefaultOptions returns sensible defaults for export
func DefaultOptions() Options {
	return Options{
		Format:         FormatMarkdown,
		IncludeSources: true,
	}
}

// ParseFormat accepts "markdown", "md" or "json"
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md", "":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown transcript format %q", s)
	}
}

// Markdown renders the messages as a Markdown document
func Markdown(messages []models.Message, skin models.Skin, opts Options) string {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(skin.Title)
	sb.WriteString("\n\n")

	if len(messages) > 0 {
		sb.WriteString("**Started:** ")
		sb.WriteString(messages[0].CreatedAt.Format("2006-01-02 15:04:05"))
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("**Messages:** %d", len(messages)))
	sb.WriteString("\n\n---\n\n")

	for i, msg := range messages {
		role := skin.AssistantName
		if msg.IsUser() {
			role = "You"
		}

		sb.WriteString("## ")
		sb.WriteString(role)
		if !msg.CreatedAt.IsZero() {
			sb.WriteString(" (")
			sb.WriteString(msg.CreatedAt.Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		if opts.IncludeSources && msg.HasSource() {
			sb.WriteString("\n*Source: ")
			sb.WriteString(msg.Source)
			sb.WriteString("*\n")
		}

		if i < len(messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

type exportMessage struct {
	ID        string    `json:"id,omitempty"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type exportTranscript struct {
	Title    string          `json:"title"`
	Skin     string          `json:"skin"`
	Messages []exportMessage `json:"messages"`
}

// JSON renders the messages as an indented JSON document
func JSON(messages []models.Message, skin models.Skin, opts Options) ([]byte, error) {
	export := exportTranscript{
		Title:    skin.Title,
		Skin:     skin.Name,
		Messages: make([]exportMessage, len(messages)),
	}

	for i, msg := range messages {
		export.Messages[i] = exportMessage{
			Role:      msg.Role.String(),
			Content:   msg.Content,
			Timestamp: msg.CreatedAt,
		}
		if opts.IncludeIDs {
			export.Messages[i].ID = msg.ID
		}
		if opts.IncludeSources {
			export.Messages[i].Source = msg.Source
		}
	}

	return json.MarshalIndent(export, "", "  ")
}

// Render dispatches on opts.Format
func Render(messages []models.Message, skin models.Skin, opts Options) ([]byte, error) {
	switch opts.Format {
	case FormatJSON:
		return JSON(messages, skin, opts)
	case FormatMarkdown, "":
		return []byte(Markdown(messages, skin, opts)), nil
	default:
		return nil, fmt.Errorf("unknown transcript format %q", opts.Format)
	}
}

// FileName is the default name for a transcript saved at t
func FileName(t time.Time, format Format) string {
	ext := ".md"
	if format == FormatJSON {
		ext = ".json"
	}
	return "eacassist-" + t.Format("20060102-150405") + ext
}

// WriteFile renders the messages into dir and returns the written path
func WriteFile(dir string, messages []models.Message, skin models.Skin, opts Options, now time.Time) (string, error) {
	data, err := Render(messages, skin, opts)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(now, opts.Format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write transcript: %w", err)
	}
	return path, nil
}
