// Package render provides markdown rendering utilities for terminal output.
package render

import "github.com/charmbracelet/glamour/styles"

// Styles understood by glamour without a style file
const (
	StyleAuto       = styles.AutoStyle
	StyleDark       = styles.DarkStyle
	StyleLight      = styles.LightStyle
	StyleNoTTY      = styles.NoTTYStyle
	StyleASCII      = styles.AsciiStyle
	StyleDracula    = styles.DraculaStyle
	StyleTokyoNight = styles.TokyoNightStyle
)

// Options configures how answers are rendered.
// It is comparable and doubles as the renderer cache key.
type Options struct {
	Width            int
	Style            string // built-in name, "auto", or a JSON style file
	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            StyleDark,
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// WithWidth returns Options with the specified width.
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns Options with the specified style.
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

// IsStandardStyle reports whether style names a glamour built-in
func IsStandardStyle(style string) bool {
	if style == StyleAuto {
		return true
	}
	_, ok := styles.DefaultStyles[style]
	return ok
}

// StyleNames lists the built-in styles offered by `config set markdown.style`
func StyleNames() []string {
	return []string{StyleDark, StyleLight, StyleAuto, StyleTokyoNight, StyleDracula, StyleNoTTY, StyleASCII}
}
