// Package normalize unifies generation payload shapes. A fresh response
// carries its action fields at the top level; a historical output nests
// them under "output" next to sibling metadata. Both collapse into one
// canonical shape so the rest of the client never branches on origin.
package normalize

import "edugen-client/internal/dto"

// metadata keys that must survive the merge even when the nested output
// carries colliding keys.
var preserved = []string{"output_id", "content_id", "feature", "options"}

// Result produces the canonical payload. Chatbot outputs are exempt: their
// conversation is reconstructed by the chat loader from the wrapped shape,
// so they pass through untouched. The function is idempotent and does not
// mutate its input.
func Result(feature dto.Action, data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}
	if feature == dto.ActionChatbot {
		return data
	}

	output, ok := data["output"].(map[string]interface{})
	if !ok {
		// Already canonical.
		return data
	}

	merged := make(map[string]interface{}, len(data)+len(output))
	for k, v := range data {
		merged[k] = v
	}
	for k, v := range output {
		merged[k] = v
	}
	for _, key := range preserved {
		if v, ok := data[key]; ok {
			merged[key] = v
		}
	}

	// Quiz mode lives under options in stored outputs but drives the
	// interaction path, so it is lifted onto the canonical result.
	if feature == dto.ActionQuiz {
		if options, ok := data["options"].(map[string]interface{}); ok {
			if mode, ok := options["mode"]; ok {
				merged["mode"] = mode
			}
		}
	}

	return merged
}
