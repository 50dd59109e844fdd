package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// maxIdle caps the idle renderers kept per option set
const maxIdle = 4

// renderers hands out glamour renderers keyed by the Options that built them.
// A TermRenderer cannot render concurrently, so each call borrows its own.
type renderers struct {
	mu   sync.Mutex
	idle map[Options][]*glamour.TermRenderer
}

var shared = &renderers{idle: make(map[Options][]*glamour.TermRenderer)}

func (r *renderers) borrow(opts Options) (*glamour.TermRenderer, error) {
	r.mu.Lock()
	free, seen := r.idle[opts]
	if n := len(free); n > 0 {
		tr := free[n-1]
		r.idle[opts] = free[:n-1]
		r.mu.Unlock()
		return tr, nil
	}
	r.mu.Unlock()

	tr, err := newTermRenderer(opts)
	if err != nil {
		return nil, err
	}
	if !seen {
		r.mu.Lock()
		if _, ok := r.idle[opts]; !ok {
			r.idle[opts] = nil
		}
		r.mu.Unlock()
	}
	return tr, nil
}

func (r *renderers) release(opts Options, tr *glamour.TermRenderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.idle[opts]) < maxIdle {
		r.idle[opts] = append(r.idle[opts], tr)
	}
}

func newTermRenderer(opts Options) (*glamour.TermRenderer, error) {
	ropts := []glamour.TermRendererOption{
		styleOption(opts.Style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
	}
	if opts.EnableEmoji {
		ropts = append(ropts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		ropts = append(ropts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(ropts...)
}

// styleOption maps a configured style to glamour: "auto" or empty detects the
// terminal, built-in names load bundled styles, anything else is a JSON file.
func styleOption(style string) glamour.TermRendererOption {
	switch {
	case style == "" || style == StyleAuto:
		return glamour.WithAutoStyle()
	case IsStandardStyle(style):
		return glamour.WithStandardStyle(style)
	default:
		return glamour.WithStylePath(style)
	}
}

// ClearCache drops every idle renderer.
func ClearCache() {
	shared.mu.Lock()
	shared.idle = make(map[Options][]*glamour.TermRenderer)
	shared.mu.Unlock()
}

// CacheSize reports how many distinct option sets have built a renderer.
func CacheSize() int {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	return len(shared.idle)
}
