package llm

import "context"

type contextKey int

const (
	purposeKey contextKey = iota
	questionKey
)

// WithPurpose labels requests made with ctx, e.g. "explain".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom returns the purpose label, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// WithQuestion tags requests made with ctx with a USCIS question number so
// log lines and usage can be traced back to a card.
func WithQuestion(ctx context.Context, number int) context.Context {
	return context.WithValue(ctx, questionKey, number)
}

// QuestionFrom returns the question number set by WithQuestion.
func QuestionFrom(ctx context.Context) (int, bool) {
	n, ok := ctx.Value(questionKey).(int)
	return n, ok
}
