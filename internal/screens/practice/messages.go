package practice

import (
	"github.com/VVic23/civics-practice/internal/explain"
	"github.com/VVic23/civics-practice/internal/question"
)

// questionsLoadedMsg is sent when the pool fetch for load generation gen
// finishes.
type questionsLoadedMsg struct {
	gen  uint64
	pool []question.Question
	err  error
}

// feedbackExpiredMsg is sent when a "Correct!/Incorrect!" notice should be
// gone. It only triggers a re-render plus an expiry check.
type feedbackExpiredMsg struct {
	gen uint64
	id  string
}

// explainDoneMsg carries a generated explanation for one question.
type explainDoneMsg struct {
	gen uint64
	id  string
	exp *explain.Explanation
	err error
}
