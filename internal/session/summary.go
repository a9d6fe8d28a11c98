package session

// PassMark is the number of correct answers the civics interview asks for.
// It is reported to the user, never enforced.
const PassMark = 6

// Summary holds the tally shown under the practice cards.
type Summary struct {
	Total     int
	Attempted int
	Correct   int
}

// Passed reports whether the current tally reaches PassMark.
func (s Summary) Passed() bool {
	return s.Correct >= PassMark
}

// Summary snapshots the running tally.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{Total: len(s.sample)}
	for _, e := range s.entries {
		switch e.Grade {
		case Correct:
			sum.Correct++
			sum.Attempted++
		case Incorrect:
			sum.Attempted++
		}
	}
	return sum
}
