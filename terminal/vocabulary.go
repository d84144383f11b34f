package terminal

import (
	"fmt"
	"strings"
)

// HeaderOffset keeps a scrolled-to section clear of the fixed site header.
const HeaderOffset = 80

// BlogPage is where the blog command navigates.
const BlogPage = "blog.html"

// ActionKind tags the side effect carried by an Action.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionScroll
	ActionNavigate
)

// String returns the wire name of the kind.
func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionScroll:
		return "scroll"
	case ActionNavigate:
		return "navigate"
	default:
		return "unknown"
	}
}

// Action is a side effect fired after a command's response finishes typing.
// Scroll actions target the element whose id is Target, offset upward by
// Offset. Navigate actions load Target as a page.
type Action struct {
	Kind   ActionKind
	Target string
	Offset int
}

// Command is one entry of the vocabulary.
type Command struct {
	Name        string
	Description string
	Respond     func(name string) string
	Action      func(name string) Action
	// Resets bypasses the response path and reboots the terminal.
	Resets bool
}

// Reply is the outcome of looking up a folded command.
type Reply struct {
	Text   string
	Action Action
	// Clear means the terminal wipes its output and reboots; Text is unused.
	Clear bool
}

// Vocabulary maps command names to their behaviour. Order is the listing
// order used by help.
type Vocabulary struct {
	commands map[string]Command
	order    []string
}

// Fold normalises raw input for lookup, storage and echo.
func Fold(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

func scrollTo(name string) Action {
	return Action{Kind: ActionScroll, Target: name, Offset: HeaderOffset}
}

func executing(name string) string {
	return fmt.Sprintf("Executing... scrolling to %s section.", name)
}

// DefaultVocabulary returns the site's fixed command set.
func DefaultVocabulary() *Vocabulary {
	v := &Vocabulary{commands: make(map[string]Command)}
	v.add(Command{Name: "help", Description: "Shows this list of commands"})
	v.add(Command{Name: "projects", Description: "Scrolls to the projects section", Respond: executing, Action: scrollTo})
	v.add(Command{Name: "contact", Description: "Scrolls to the contact section", Respond: executing, Action: scrollTo})
	v.add(Command{Name: "skills", Description: "Scrolls to the skills section", Respond: executing, Action: scrollTo})
	v.add(Command{Name: "about", Description: "Scrolls to the about section", Respond: executing, Action: scrollTo})
	v.add(Command{
		Name:        "blog",
		Description: "Navigates to the blog page",
		Respond:     func(string) string { return "Navigating to blog..." },
		Action:      func(string) Action { return Action{Kind: ActionNavigate, Target: BlogPage} },
	})
	v.add(Command{Name: "clear", Description: "Clears the terminal screen", Resets: true})

	help := v.commands["help"]
	help.Respond = func(string) string { return v.helpText() }
	v.commands["help"] = help
	return v
}

func (v *Vocabulary) add(c Command) {
	if _, ok := v.commands[c.Name]; !ok {
		v.order = append(v.order, c.Name)
	}
	v.commands[c.Name] = c
}

// Names returns the command names in listing order.
func (v *Vocabulary) Names() []string {
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}

func (v *Vocabulary) helpText() string {
	var b strings.Builder
	b.WriteString("Available commands:")
	for _, name := range v.Names() {
		fmt.Fprintf(&b, "\n  %-9s - %s", name, v.commands[name].Description)
	}
	return b.String()
}

// Lookup resolves a folded command. Unknown commands yield a
// "command not found" reply with no action.
func (v *Vocabulary) Lookup(cmd string) Reply {
	c, ok := v.commands[cmd]
	if !ok {
		return Reply{Text: "bash: command not found: " + cmd}
	}
	if c.Resets {
		return Reply{Clear: true}
	}
	r := Reply{}
	if c.Respond != nil {
		r.Text = c.Respond(cmd)
	}
	if c.Action != nil {
		r.Action = c.Action(cmd)
	}
	return r
}
