package terminal

import (
	"context"
	"sync"
	"time"
)

// State is the session's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateBooting
	StateAwaitingInput
	StateProcessing
)

// String returns a readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBooting:
		return "booting"
	case StateAwaitingInput:
		return "awaiting_input"
	case StateProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

// Key is a key the session reacts to. Other keys are left to native editing.
type Key string

const (
	KeyEnter     Key = "Enter"
	KeyArrowUp   Key = "ArrowUp"
	KeyArrowDown Key = "ArrowDown"
)

// DefaultPrompt is shown before every input line and echo.
const DefaultPrompt = "[user@CNS ~]$"

// DefaultWelcome is the narration typed when the terminal boots.
var DefaultWelcome = []string{
	"Initializing connection...",
	"Connection established.",
	"Welcome. I am Chandika Nawodya Senarathna.",
	"> Cybersecurity Student",
	"> Brand Designer",
	"\nType 'help' for a list of available commands.",
}

// Options configures a Session.
type Options struct {
	Prompt        string
	Welcome       []string
	BootDelay     time.Duration
	ResponseDelay time.Duration
	Vocabulary    *Vocabulary
}

// DefaultOptions returns the landing page terminal settings.
func DefaultOptions() Options {
	return Options{
		Prompt:        DefaultPrompt,
		Welcome:       DefaultWelcome,
		BootDelay:     30 * time.Millisecond,
		ResponseDelay: 10 * time.Millisecond,
		Vocabulary:    DefaultVocabulary(),
	}
}

// Session is one terminal on one page. It is created when the page connects
// and discarded when it goes away; history lives exactly as long.
//
// Animations run on a background goroutine. While one runs there is no input
// line, so keys are dropped until the next prompt appears.
type Session struct {
	screen  Screen
	opts    Options
	history *History

	mu    sync.Mutex
	ctx   context.Context
	state State
	wg    sync.WaitGroup
}

// NewSession builds a session that draws on screen. An empty Prompt, nil
// Welcome or nil Vocabulary falls back to DefaultOptions. Zero delays are kept
// and type instantly.
func NewSession(screen Screen, opts Options) *Session {
	def := DefaultOptions()
	if opts.Prompt == "" {
		opts.Prompt = def.Prompt
	}
	if opts.Welcome == nil {
		opts.Welcome = def.Welcome
	}
	if opts.Vocabulary == nil {
		opts.Vocabulary = def.Vocabulary
	}
	return &Session{
		screen:  screen,
		opts:    opts,
		history: NewHistory(),
		ctx:     context.Background(),
	}
}

// Start plays the welcome sequence. Cancelling ctx stops any animation in
// flight and ends the session. Calling Start more than once has no effect.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return
	}
	s.ctx = ctx
	s.bootLocked()
}

// Reset wipes the screen and replays the welcome sequence. History is kept.
// It does nothing unless the session is awaiting input, so it never starts a
// second animation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingInput {
		return
	}
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.screen.Clear()
	s.bootLocked()
}

func (s *Session) bootLocked() {
	s.state = StateBooting
	s.spawn(s.boot)
}

func (s *Session) spawn(fn func(ctx context.Context)) {
	ctx := s.ctx
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(ctx)
	}()
}

func (s *Session) boot(ctx context.Context) {
	for _, line := range s.opts.Welcome {
		slot := NewSlot(s.screen.OpenOutput())
		if err := Type(ctx, slot, line, s.opts.BootDelay); err != nil {
			return
		}
	}
	s.prompt()
}

func (s *Session) respond(ctx context.Context, reply Reply) {
	slot := NewSlot(s.screen.OpenOutput())
	if err := Type(ctx, slot, reply.Text, s.opts.ResponseDelay); err != nil {
		return
	}
	if reply.Action.Kind != ActionNone {
		s.screen.Perform(reply.Action)
	}
	s.prompt()
}

func (s *Session) prompt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return
	}
	s.state = StateAwaitingInput
	s.screen.ShowInput(s.opts.Prompt)
}

// HandleKey reacts to a key pressed in the live input line, whose current
// text is value. It reports whether the key was consumed; keys arriving
// while no input line exists are dropped.
func (s *Session) HandleKey(key Key, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingInput {
		return false
	}

	switch key {
	case KeyEnter:
		s.submitLocked(value)
	case KeyArrowUp:
		if v, ok := s.history.Older(); ok {
			s.screen.SetInput(v)
		}
	case KeyArrowDown:
		if v, ok := s.history.Newer(); ok {
			s.screen.SetInput(v)
		}
	default:
		return false
	}
	return true
}

func (s *Session) submitLocked(value string) {
	cmd := Fold(value)
	s.history.Push(cmd)

	if cmd == "" {
		s.history.ResetCursor()
		s.screen.Echo(s.opts.Prompt)
		s.screen.ShowInput(s.opts.Prompt)
		return
	}
	s.screen.Echo(s.opts.Prompt + " " + cmd)

	reply := s.opts.Vocabulary.Lookup(cmd)
	if reply.Clear {
		s.resetLocked()
		return
	}
	s.state = StateProcessing
	s.spawn(func(ctx context.Context) { s.respond(ctx, reply) })
}

// Click refocuses the live input line, if there is one.
func (s *Session) Click() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAwaitingInput {
		s.screen.Focus()
	}
}

// Wait blocks until any running animation has finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns submitted commands, most recent first.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}

// Prompt returns the prompt drawn before input lines.
func (s *Session) Prompt() string {
	return s.opts.Prompt
}
