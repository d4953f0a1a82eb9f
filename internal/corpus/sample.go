package corpus

import (
	"math/rand/v2"

	"github.com/mvp-joe/funcscrape/internal/extract"
)

// NewRand returns a generator for Sample. A zero seed draws a random one.
func NewRand(seed int64) *rand.Rand {
	s := uint64(seed)
	if seed == 0 {
		s = rand.Uint64()
	}
	return rand.New(rand.NewPCG(s, s))
}

// Sample picks min(n, len(records)) distinct records uniformly at random,
// in the order drawn. records is not modified.
func Sample(records []extract.Record, n int, rng *rand.Rand) []extract.Record {
	if n <= 0 || len(records) == 0 {
		return nil
	}
	if n > len(records) {
		n = len(records)
	}

	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}

	picked := make([]extract.Record, 0, n)
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		picked = append(picked, records[idx[i]])
	}
	return picked
}
