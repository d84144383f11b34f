package main

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cnsenarathna/portfolio/terminal"
)

// Messages sent by teaScreen into the Update loop.
type (
	openRowMsg  struct{ id int }
	appendMsg   struct {
		id int
		r  rune
	}
	promptMsg   struct{ prompt string }
	setInputMsg struct{ value string }
	echoMsg     struct{ line string }
	clearMsg    struct{}
	focusMsg    struct{}
	actionMsg   struct{ action terminal.Action }
)

// teaScreen implements terminal.Screen by forwarding every call to the
// program as a message. The session calls it from its own goroutines, so
// session methods must never run inside Update or View.
type teaScreen struct {
	send func(tea.Msg)

	mu   sync.Mutex
	next int
}

type teaOutput struct {
	screen *teaScreen
	id     int
}

func (o teaOutput) Append(r rune) { o.screen.send(appendMsg{id: o.id, r: r}) }

func (s *teaScreen) OpenOutput() terminal.Output {
	s.mu.Lock()
	s.next++
	id := s.next
	s.mu.Unlock()
	s.send(openRowMsg{id: id})
	return teaOutput{screen: s, id: id}
}

func (s *teaScreen) ShowInput(prompt string)   { s.send(promptMsg{prompt: prompt}) }
func (s *teaScreen) SetInput(value string)     { s.send(setInputMsg{value: value}) }
func (s *teaScreen) Echo(line string)          { s.send(echoMsg{line: line}) }
func (s *teaScreen) Clear()                    { s.send(clearMsg{}) }
func (s *teaScreen) Focus()                    { s.send(focusMsg{}) }
func (s *teaScreen) Perform(a terminal.Action) { s.send(actionMsg{action: a}) }

type rowKind int

const (
	rowOutput rowKind = iota
	rowEcho
	rowAction
)

type row struct {
	id   int // zero for rows that never grow
	kind rowKind
	text string
}

// Model is the Bubble Tea model for the console terminal.
type Model struct {
	session *terminal.Session
	ctx     context.Context
	cancel  context.CancelFunc
	siteURL string

	viewport viewport.Model
	input    textinput.Model
	rows     []row

	awaiting bool
	width    int
	height   int
	ready    bool
	quitting bool
}

// NewModel wires a model to session. Navigation targets resolve against
// siteURL.
func NewModel(ctx context.Context, session *terminal.Session, siteURL string) Model {
	ctx, cancel := context.WithCancel(ctx)
	ti := textinput.New()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt
	return Model{
		session: session,
		ctx:     ctx,
		cancel:  cancel,
		siteURL: strings.TrimRight(siteURL, "/"),
		input:   ti,
	}
}

// Run starts the program and blocks until the user quits.
func Run(siteURL string, opts terminal.Options) error {
	screen := &teaScreen{}
	session := terminal.NewSession(screen, opts)
	m := NewModel(context.Background(), session, siteURL)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	screen.send = p.Send
	_, err := p.Run()

	m.cancel()
	session.Wait()
	return err
}

// Init boots the session.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg {
		m.session.Start(m.ctx)
		return nil
	}
}

func (m Model) key(k terminal.Key, value string) tea.Cmd {
	return func() tea.Msg {
		m.session.HandleKey(k, value)
		return nil
	}
}

// Update handles terminal input and screen messages from the session.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := max(m.height-2, 1) // status bar + input line
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		case "enter":
			return m, m.key(terminal.KeyEnter, m.input.Value())
		case "up":
			return m, m.key(terminal.KeyArrowUp, m.input.Value())
		case "down":
			return m, m.key(terminal.KeyArrowDown, m.input.Value())
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		if !m.awaiting {
			return m, nil
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			session := m.session
			return m, func() tea.Msg {
				session.Click()
				return nil
			}
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case openRowMsg:
		m.rows = append(m.rows, row{id: msg.id, kind: rowOutput})
		m.refreshViewport()
		return m, nil

	case appendMsg:
		for i := len(m.rows) - 1; i >= 0; i-- {
			if m.rows[i].id == msg.id {
				m.rows[i].text += string(msg.r)
				break
			}
		}
		m.refreshViewport()
		return m, nil

	case promptMsg:
		m.awaiting = true
		m.input.Prompt = msg.prompt + " "
		m.input.SetValue("")
		return m, m.input.Focus()

	case setInputMsg:
		m.input.SetValue(msg.value)
		m.input.CursorEnd()
		return m, nil

	case echoMsg:
		m.awaiting = false
		m.input.Blur()
		m.rows = append(m.rows, row{kind: rowEcho, text: msg.line})
		m.refreshViewport()
		return m, nil

	case clearMsg:
		m.rows = nil
		m.refreshViewport()
		return m, nil

	case focusMsg:
		if m.awaiting {
			return m, m.input.Focus()
		}
		return m, nil

	case actionMsg:
		m.rows = append(m.rows, row{kind: rowAction, text: m.describe(msg.action)})
		m.refreshViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// describe renders an action as a line, since a console cannot scroll a
// page or load one.
func (m Model) describe(a terminal.Action) string {
	switch a.Kind {
	case terminal.ActionScroll:
		return "→ " + m.siteURL + "/#" + a.Target
	case terminal.ActionNavigate:
		return "→ open " + m.siteURL + "/" + a.Target
	default:
		return ""
	}
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	lines := make([]string, 0, len(m.rows))
	for _, r := range m.rows {
		switch r.kind {
		case rowEcho:
			lines = append(lines, styleEcho.Render(r.text))
		case rowAction:
			lines = append(lines, styleAction.Render(r.text))
		default:
			lines = append(lines, styleOutput.Render(r.text))
		}
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoBottom()
}

// Transcript returns the plain text of every row.
func (m Model) Transcript() []string {
	out := make([]string, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.text
	}
	return out
}

// View renders the output rows, a status bar and the live input line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	state := "busy"
	if m.awaiting {
		state = "ready"
	}
	status := styleStatusBar.Width(m.width).Render(" termfolio │ " + m.siteURL + " │ " + state)
	line := ""
	if m.awaiting {
		line = m.input.View()
	}
	return m.viewport.View() + "\n" + status + "\n" + line
}
