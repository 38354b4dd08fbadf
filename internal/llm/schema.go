package llm

// ChatCompletionSchema describes the subset of a chat-completion response we
// rely on: choices[0].message.content as a string.
func ChatCompletionSchema() map[string]any {
	message := map[string]any{
		"type":     "object",
		"required": []string{"content"},
		"properties": map[string]any{
			"role":    map[string]any{"type": "string"},
			"content": map[string]any{"type": "string"},
		},
	}
	choice := map[string]any{
		"type":       "object",
		"required":   []string{"message"},
		"properties": map[string]any{"message": message},
	}
	return map[string]any{
		"type":     "object",
		"required": []string{"choices"},
		"properties": map[string]any{
			"choices": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    choice,
			},
		},
	}
}

// GenerateContentSchema describes the subset of a generative-content response
// we rely on: candidates[0].content.parts[0].text as a string.
func GenerateContentSchema() map[string]any {
	part := map[string]any{
		"type":       "object",
		"required":   []string{"text"},
		"properties": map[string]any{"text": map[string]any{"type": "string"}},
	}
	content := map[string]any{
		"type":     "object",
		"required": []string{"parts"},
		"properties": map[string]any{
			"parts": map[string]any{"type": "array", "minItems": 1, "items": part},
		},
	}
	candidate := map[string]any{
		"type":       "object",
		"required":   []string{"content"},
		"properties": map[string]any{"content": content},
	}
	return map[string]any{
		"type":     "object",
		"required": []string{"candidates"},
		"properties": map[string]any{
			"candidates": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    candidate,
			},
		},
	}
}
