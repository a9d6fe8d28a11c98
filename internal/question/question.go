package question

import (
	"fmt"
	"strings"
)

// Question is a single civics question from the pool. The engine treats it
// as read-only.
type Question struct {
	// ID is an opaque identifier, stable across fetches.
	ID string

	// Number is the external catalog reference (e.g. "USCIS #12").
	// Uniqueness is not enforced.
	Number int

	// Category is a display-only label such as "American Government".
	Category string

	// Prompt is the question text.
	Prompt string

	// AcceptedAnswers lists every answer that counts as correct, in
	// catalog order. Never empty for a valid question.
	AcceptedAnswers []string
}

// ValidationError describes a question record that failed ingestion checks.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the pool invariants that grading relies on. A blank
// accepted answer is rejected here because it would make an empty input
// grade as correct.
func (q Question) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return &ValidationError{Field: "id", Message: "id is required"}
	}
	if strings.TrimSpace(q.Prompt) == "" {
		return &ValidationError{Field: "question", Message: "question text is required"}
	}
	if len(q.AcceptedAnswers) == 0 {
		return &ValidationError{Field: "answers", Message: "at least one accepted answer is required"}
	}
	for i, a := range q.AcceptedAnswers {
		if strings.TrimSpace(a) == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("answers[%d]", i),
				Message: "accepted answer must not be blank",
			}
		}
	}
	return nil
}
