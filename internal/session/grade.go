package session

import "strings"

// Grade is the verdict recorded on an entry by its most recent submit.
type Grade int

const (
	Ungraded Grade = iota
	Correct
	Incorrect
)

func (g Grade) String() string {
	switch g {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "ungraded"
	}
}

// Normalize trims surrounding whitespace and lower-cases s. Interior
// whitespace and punctuation are kept as typed.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// GradeAnswer compares input against every accepted answer after
// normalisation. Only an exact match counts.
func GradeAnswer(input string, accepted []string) Grade {
	in := Normalize(input)
	for _, a := range accepted {
		if Normalize(a) == in {
			return Correct
		}
	}
	return Incorrect
}
