package entities

// AuthPrompt represents a prompt-response pair during login.
// WaitFor is a regular expression matched against the trailing session output.
type AuthPrompt struct {
	WaitFor string // prompt to wait for
	SendCmd string // line to send (empty means just wait)
	Secret  bool   // SendCmd must never be logged
}
