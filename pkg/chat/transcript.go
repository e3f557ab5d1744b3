// Package chat provides the client side of a relay conversation: an HTTP
// client for the relay and the in-memory transcript of one session.
package chat

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ErrorPrefix marks assistant messages that report a failed request.
const ErrorPrefix = "Error: "

// Message is a single entry in a transcript.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Transcript is the ordered, append-only message list of one session.
// It is never persisted and is not safe for concurrent writers.
type Transcript struct {
	messages []Message
}

// AppendUser records a prompt.
func (t *Transcript) AppendUser(text string) Message {
	return t.append(Message{Role: RoleUser, Text: text})
}

// AppendAssistant records a reply.
func (t *Transcript) AppendAssistant(text string) Message {
	return t.append(Message{Role: RoleAssistant, Text: text})
}

// AppendError records a failed request as an assistant message.
func (t *Transcript) AppendError(err error) Message {
	return t.append(Message{Role: RoleAssistant, Text: ErrorPrefix + err.Error()})
}

// Messages returns a copy of the transcript, oldest first.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

func (t *Transcript) append(m Message) Message {
	t.messages = append(t.messages, m)
	return m
}
