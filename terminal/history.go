// Package terminal implements the scripted command-line widget shown on the
// portfolio landing page. Pure state (history, vocabulary) is kept apart from
// rendering, which goes through the Screen interface.
package terminal

// History holds submitted commands, most recent first, with a navigation
// cursor. A cursor of -1 means the user is not navigating.
type History struct {
	entries []string
	cursor  int
}

// NewHistory returns an empty history with the cursor reset.
func NewHistory() *History {
	return &History{cursor: -1}
}

// Push records a command as the newest entry and resets the cursor.
// Empty commands are ignored.
func (h *History) Push(cmd string) {
	if cmd == "" {
		return
	}
	h.entries = append([]string{cmd}, h.entries...)
	h.cursor = -1
}

// Older moves the cursor one step toward older entries (ArrowUp).
// Returns false at the oldest entry or when history is empty.
func (h *History) Older() (string, bool) {
	if h.cursor >= len(h.entries)-1 {
		return "", false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

// Newer moves the cursor one step toward newer entries (ArrowDown).
// Leaving the newest entry resets the cursor and yields an empty value.
// Returns false only when the cursor is already reset.
func (h *History) Newer() (string, bool) {
	switch {
	case h.cursor > 0:
		h.cursor--
		return h.entries[h.cursor], true
	case h.cursor == 0:
		h.cursor = -1
		return "", true
	default:
		return "", false
	}
}

// ResetCursor stops navigation without touching the entries.
func (h *History) ResetCursor() {
	h.cursor = -1
}

// Cursor returns the navigation position, -1 when not navigating.
func (h *History) Cursor() int {
	return h.cursor
}

// Len returns the number of recorded commands.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the recorded commands, most recent first.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}
