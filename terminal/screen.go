package terminal

// Output is a single response row. The screen keeps its container scrolled to
// the bottom after every appended rune.
type Output interface {
	Append(r rune)
}

// Screen renders the terminal. Implementations draw into a page over a
// websocket or into a local TUI.
type Screen interface {
	// OpenOutput appends a new, empty output row.
	OpenOutput() Output
	// ShowInput appends a live input line with the prompt and focuses it.
	ShowInput(prompt string)
	// SetInput overwrites the live input field's value.
	SetInput(value string)
	// Echo turns the live input line into static text.
	Echo(line string)
	// Clear removes every rendered row.
	Clear()
	// Focus gives input focus back to the live input field.
	Focus()
	// Perform runs a command's side effect.
	Perform(a Action)
}
