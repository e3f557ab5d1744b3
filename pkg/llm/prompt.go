package llm

// PromptRequest is the payload the bundled clients send to the relay.
// The relay itself does not enforce this schema and forwards any JSON body.
type PromptRequest struct {
	Prompt string `json:"prompt"`
}
