// Package shuffle provides the random source used for sampling and ordering.
package shuffle

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
	"time"
)

// Rand is a random source safe for concurrent use.
type Rand interface {
	// Intn returns a uniform integer in [0, n).
	Intn(n int) int
	// Shuffle pseudo-randomizes the order of n elements.
	Shuffle(n int, swap func(i, j int))
}

type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Rand seeded with seed. Use it in tests for reproducible draws.
func New(seed int64) Rand {
	return &lockedRand{rng: rand.New(rand.NewSource(seed))}
}

// NewCrypto returns a Rand seeded from crypto/rand, falling back to the clock.
func NewCrypto() Rand {
	var seed int64
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err == nil {
		seed = int64(binary.LittleEndian.Uint64(buf[:]))
	} else {
		seed = time.Now().UnixNano()
	}
	return New(seed)
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

func (r *lockedRand) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(n, swap)
}

// Sample draws k elements of items uniformly at random without replacement.
// The result keeps draw order; items is not modified. k is clamped to [0, len(items)].
func Sample[T any](r Rand, items []T, k int) []T {
	if k <= 0 || len(items) == 0 {
		return []T{}
	}
	if k > len(items) {
		k = len(items)
	}

	// Partial Fisher-Yates over an index permutation.
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	out := make([]T, k)
	for i := 0; i < k; i++ {
		j := i + r.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = items[idx[i]]
	}
	return out
}

// InPlace shuffles items in place.
func InPlace[T any](r Rand, items []T) {
	r.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
