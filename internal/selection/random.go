package selection

import "math/rand"

// RandomSource draws uniform indexes in [0, n). Tests pin it to make draws
// reproducible.
type RandomSource interface {
	IntN(n int) int
}

type mathRandSource struct{}

func (mathRandSource) IntN(n int) int {
	return rand.Intn(n)
}

// DefaultRandomSource is backed by math/rand and is not cryptographically secure.
func DefaultRandomSource() RandomSource {
	return mathRandSource{}
}

// shuffle performs a Fisher-Yates permutation in place.
func shuffle(rnd RandomSource, keys []string) {
	for i := len(keys) - 1; i > 0; i-- {
		j := rnd.IntN(i + 1)
		keys[i], keys[j] = keys[j], keys[i]
	}
}
