package explain

import (
	"fmt"
	"strings"

	"github.com/VVic23/civics-practice/internal/question"
)

const systemPrompt = `You are a friendly tutor helping an adult prepare for the U.S. naturalization civics interview. Keep language simple; many learners speak English as a second language.`

func buildUserMessage(q question.Question) string {
	var b strings.Builder

	if q.Category != "" {
		b.WriteString(fmt.Sprintf("Category: %s\n", q.Category))
	}
	b.WriteString(fmt.Sprintf("Question #%d: %s\n", q.Number, q.Prompt))
	b.WriteString("\nAccepted answers:\n")
	for _, a := range q.AcceptedAnswers {
		b.WriteString(fmt.Sprintf("- %s\n", a))
	}

	b.WriteString(`
Instructions:
1. Explain in 2-4 sentences why these answers are correct. Give background, not a restatement.
2. Do not add new answers or say any listed answer is wrong.
3. If the answer depends on where the learner lives, say how to look it up.
4. Give one short memory tip.
5. Plain text only. No markdown.`)

	return b.String()
}
