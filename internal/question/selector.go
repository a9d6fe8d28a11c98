package question

import (
	"errors"
	"math/rand/v2"
)

// DefaultSampleSize is the number of questions asked in one practice run,
// matching the civics interview.
const DefaultSampleSize = 10

var (
	// ErrEmptyPool is returned when sampling from a pool with no questions.
	ErrEmptyPool = errors.New("question pool is empty")

	// ErrInvalidSampleSize is returned when the requested sample size is not positive.
	ErrInvalidSampleSize = errors.New("sample size must be positive")
)

// Sampler draws a sample of up to n questions from pool.
type Sampler func(pool []Question, n int) ([]Question, error)

// SelectSample draws min(n, len(pool)) distinct questions from pool using
// the package-level random source. Each call is independent.
func SelectSample(pool []Question, n int) ([]Question, error) {
	return sample(pool, n, rand.IntN)
}

// NewSampler returns a Sampler backed by r. Useful when a test needs a
// reproducible draw.
func NewSampler(r *rand.Rand) Sampler {
	return func(pool []Question, n int) ([]Question, error) {
		return sample(pool, n, r.IntN)
	}
}

// sample runs a partial Fisher-Yates shuffle over a copy of pool and returns
// the first k positions. The caller's slice is left untouched.
func sample(pool []Question, n int, intN func(int) int) ([]Question, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	if n <= 0 {
		return nil, ErrInvalidSampleSize
	}

	k := min(n, len(pool))
	shuffled := make([]Question, len(pool))
	copy(shuffled, pool)

	for i := 0; i < k; i++ {
		j := i + intN(len(shuffled)-i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled[:k:k], nil
}
