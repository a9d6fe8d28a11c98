package explain

import "github.com/VVic23/civics-practice/internal/llm"

// ExplanationSchema defines the JSON schema for answer explanations.
var ExplanationSchema = &llm.Schema{
	Name:        "answer-explanation",
	Description: "Why the accepted answers to a civics question are correct, plus a memory tip",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"description": "2-4 plain sentences of historical or constitutional background",
			},
			"memory_tip": map[string]any{
				"type":        "string",
				"description": "One short mnemonic or association to remember the answer",
			},
		},
		"required":             []any{"explanation", "memory_tip"},
		"additionalProperties": false,
	},
}
