package model

// History is the ordered conversation sent to the backend on every request.
// Only the controller touches it, so it carries no lock.
type History struct {
	messages []Message
}

func NewHistory() *History {
	return &History{}
}

// Append adds a message to the end. Role ordering is not checked here; the
// controller only appends complete exchanges.
func (h *History) Append(msg Message) {
	h.messages = append(h.messages, msg)
}

// EnforceLimit keeps at most limit messages, dropping from the front. After a
// cut it keeps dropping until the first message is a system or user message,
// so the history never opens with a tool result or an assistant tool call
// whose request was cut off. A history within the limit is left alone.
func (h *History) EnforceLimit(limit int) {
	if limit < 0 {
		limit = 0
	}
	if len(h.messages) <= limit {
		return
	}
	start := len(h.messages) - limit
	for start < len(h.messages) && !opensTurn(h.messages[start]) {
		start++
	}
	h.messages = append([]Message(nil), h.messages[start:]...)
}

func opensTurn(msg Message) bool {
	return msg.Role == RoleSystem || msg.Role == RoleUser
}

// Messages returns a copy of the history.
func (h *History) Messages() []Message {
	return append([]Message(nil), h.messages...)
}

func (h *History) Len() int {
	return len(h.messages)
}

func (h *History) Reset() {
	h.messages = nil
}
