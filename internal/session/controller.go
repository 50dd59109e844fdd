// Package session implements the chat session controller: it owns the
// transcript, the draft input, and the single in-flight backend request.
package session

//go:generate mockgen -destination=./backend_mock_test.go -package=session github.com/eacsecretariat/eacassist/internal/api Backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/eacsecretariat/eacassist/internal/api"
	apierrors "github.com/eacsecretariat/eacassist/internal/errors"
	"github.com/eacsecretariat/eacassist/internal/models"
)

// State is the per-submission state of the controller
type State int

const (
	Idle State = iota
	Waiting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Waiting:
		return "waiting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StateHook observes every waiting transition, in order
type StateHook func(waiting bool)

// Option configures a Controller
type Option func(*Controller)

// WithSkin sets the branding (greeting and connectivity-error text)
func WithSkin(skin models.Skin) Option {
	return func(c *Controller) {
		c.skin = skin
	}
}

// WithLogger sets the diagnostics logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStateHook registers an observer for waiting transitions
func WithStateHook(hook StateHook) Option {
	return func(c *Controller) {
		c.hook = hook
	}
}

// Controller is the chat session state container.
// The transcript is append-only; at most one exchange is in flight.
type Controller struct {
	backend api.Backend
	skin    models.Skin
	logger  *zap.Logger
	hook    StateHook

	mu       sync.Mutex
	messages []models.Message
	seeded   bool
	draft    string
	inflight *Exchange

	initOnce      sync.Once
	refreshCancel context.CancelFunc
	wg            sync.WaitGroup
}

// NewController creates a controller bound to a backend
func NewController(backend api.Backend, opts ...Option) (*Controller, error) {
	if backend == nil {
		return nil, errors.New("session: backend is required")
	}

	c := &Controller{
		backend: backend,
		skin:    models.DefaultSkin,
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Initialize seeds the transcript with the greeting and fires one background
// knowledge-base refresh. It never blocks; refresh failures are only logged.
// Subsequent calls are no-ops.
func (c *Controller) Initialize(ctx context.Context) {
	c.initOnce.Do(func() {
		c.mu.Lock()
		c.seedLocked()
		refreshCtx, cancel := context.WithCancel(ctx)
		c.refreshCancel = cancel
		c.mu.Unlock()

		c.wg.Add(1)
		go c.refresh(refreshCtx, cancel)
	})
}

// seedLocked appends the greeting once, ahead of any user message
func (c *Controller) seedLocked() {
	if c.seeded {
		return
	}
	c.seeded = true
	c.messages = append(c.messages, models.NewBotMessage(c.skin.Greeting, ""))
}

func (c *Controller) refresh(ctx context.Context, cancel context.CancelFunc) {
	defer c.wg.Done()
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("background refresh panicked", zap.Any("panic", r))
		}
	}()

	if err := c.backend.Refresh(ctx); err != nil {
		c.logger.Warn("background refresh failed", zap.Error(err))
		return
	}
	c.logger.Debug("knowledge base refresh requested")
}

// Close cancels a pending background refresh and waits for it to return
func (c *Controller) Close() {
	c.mu.Lock()
	cancel := c.refreshCancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

// Submit appends the user message, asks the backend, and appends the reply.
// It returns ErrEmptyInput or ErrBusy without side effects; backend failures
// are folded into the returned bot message.
func (c *Controller) Submit(ctx context.Context, text string) (models.Message, error) {
	ex, err := c.Begin(text)
	if err != nil {
		return models.Message{}, err
	}
	return ex.Complete(ctx), nil
}

// Begin validates the input, appends the user message, clears the draft and
// enters the waiting state. The greeting is seeded first if Initialize has not
// run yet, so the transcript always opens with it. The caller must Complete the returned exchange.
func (c *Controller) Begin(text string) (*Exchange, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apierrors.ErrEmptyInput
	}

	c.mu.Lock()
	if c.inflight != nil {
		c.mu.Unlock()
		return nil, apierrors.ErrBusy
	}

	c.seedLocked()
	msg := models.NewUserMessage(text)
	c.messages = append(c.messages, msg)
	c.draft = ""
	ex := &Exchange{controller: c, user: msg}
	c.inflight = ex
	c.mu.Unlock()

	c.notify(true)
	return ex, nil
}

// complete runs the backend call for ex. Leaving the waiting state is always
// the last step, even when the backend panics.
func (c *Controller) complete(ctx context.Context, ex *Exchange) (reply models.Message, cause error) {
	defer c.finish(ex)
	defer func() {
		if r := recover(); r != nil {
			cause = fmt.Errorf("backend panicked: %v", r)
			reply = c.fail(ex, cause)
		}
	}()

	resp, err := c.backend.Chat(ctx, ex.user.Content)
	if err != nil {
		return c.fail(ex, err), err
	}
	if resp == nil {
		err = apierrors.NewParseError("empty response", "")
		return c.fail(ex, err), err
	}

	reply = models.NewBotMessage(resp.Answer, resp.Source)
	c.append(reply)

	c.logger.Debug("answer received",
		zap.String("message_id", ex.user.ID),
		zap.Bool("has_source", reply.HasSource()),
		zap.String("context_used", resp.ContextUsed))

	return reply, nil
}

// fail appends the fixed connectivity-error message
func (c *Controller) fail(ex *Exchange, err error) models.Message {
	c.logger.Warn("chat request failed",
		zap.String("message_id", ex.user.ID),
		zap.Int("http_status", apierrors.GetHTTPStatus(err)),
		zap.Error(err))

	reply := models.NewBotMessage(c.skin.ConnectivityError, "")
	c.append(reply)
	return reply
}

func (c *Controller) finish(ex *Exchange) {
	c.mu.Lock()
	if c.inflight == ex {
		c.inflight = nil
	}
	c.mu.Unlock()

	c.notify(false)
}

func (c *Controller) append(msg models.Message) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
}

func (c *Controller) notify(waiting bool) {
	if c.hook != nil {
		c.hook(waiting)
	}
}

// Messages returns a copy of the transcript in chronological order
func (c *Controller) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Last returns the newest message
func (c *Controller) Last() (models.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.messages) == 0 {
		return models.Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// LastAnswer returns the newest bot message
func (c *Controller) LastAnswer() (models.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == models.RoleBot {
			return c.messages[i], true
		}
	}
	return models.Message{}, false
}

// Waiting reports whether a request is in flight
func (c *Controller) Waiting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight != nil
}

// State returns Idle or Waiting
func (c *Controller) State() State {
	if c.Waiting() {
		return Waiting
	}
	return Idle
}

// Draft returns the pending input text
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SetDraft updates the pending input text
func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
}

// Skin returns the controller's branding
func (c *Controller) Skin() models.Skin {
	return c.skin
}

// Exchange is one submitted query awaiting its reply
type Exchange struct {
	controller *Controller
	user       models.Message

	once  sync.Once
	reply models.Message
	err   error
}

// UserMessage returns the message appended by Begin
func (e *Exchange) UserMessage() models.Message {
	return e.user
}

// Complete performs the backend call and returns the appended bot message.
// Only the first call does any work.
func (e *Exchange) Complete(ctx context.Context) models.Message {
	e.once.Do(func() {
		e.reply, e.err = e.controller.complete(ctx, e)
	})
	return e.reply
}

// Err returns the backend failure behind the reply, or nil on success.
// Valid after Complete.
func (e *Exchange) Err() error {
	return e.err
}
