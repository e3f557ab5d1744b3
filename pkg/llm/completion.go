package llm

import "encoding/json"

// Completion holds the top-level fields of an upstream payload that carry
// generated text. Values are kept raw since their types vary by provider.
type Completion struct {
	Output  json.RawMessage   `json:"output"`  // Direct generated output
	Choices []json.RawMessage `json:"choices"` // OpenAI-style choice list
}

// Choice is a single entry of an OpenAI-style choices array. Fields stay
// raw so that one malformed field does not hide the others.
type Choice struct {
	Text    json.RawMessage `json:"text"`    // Legacy completions text
	Message json.RawMessage `json:"message"` // Chat completions message, see ChoiceMessage
}

// ChoiceMessage is the nested message of a chat completion choice.
type ChoiceMessage struct {
	Role    json.RawMessage `json:"role"`
	Content json.RawMessage `json:"content"` // String or list of content parts
}
