package normalize

import (
	"encoding/json"

	"github.com/papercomputeco/chatrelay/pkg/llm"
)

// Classify resolves a payload to its Shape. Candidates are tried in order:
// "output", then choices[0].text, then choices[0].message.content. The first
// one that is present and non-empty wins. Anything else is Unknown.
func Classify(raw []byte) Shape {
	var completion llm.Completion
	if err := json.Unmarshal(raw, &completion); err != nil {
		// Not an object, or a field with an unexpected type (e.g. a
		// non-array "choices"). Retry the fields one at a time.
		completion = looseCompletion(raw)
	}

	if coerce(completion.Output) != "" {
		return Output{Value: completion.Output}
	}

	if len(completion.Choices) > 0 {
		var choice llm.Choice
		if err := json.Unmarshal(completion.Choices[0], &choice); err == nil {
			if coerce(choice.Text) != "" {
				return ChoiceText{Value: choice.Text}
			}

			// A message that is not an object has no content to offer
			var message llm.ChoiceMessage
			if err := json.Unmarshal(choice.Message, &message); err == nil && coerce(message.Content) != "" {
				return ChoiceMessage{Value: message.Content}
			}
		}
	}

	return Unknown{Raw: raw}
}

// Text returns the display string for an upstream payload. It never fails.
func Text(raw []byte) string {
	return Classify(raw).Text()
}

func looseCompletion(raw []byte) llm.Completion {
	var completion llm.Completion

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return completion
	}

	completion.Output = fields["output"]
	_ = json.Unmarshal(fields["choices"], &completion.Choices)

	return completion
}
