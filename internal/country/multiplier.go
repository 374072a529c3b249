package country

import (
	"math/rand/v2"
	"sync"
	"time"
)

const (
	MinGDPMultiplier = 1000
	MaxGDPMultiplier = 2000
)

// Multiplier yields the per-country factor used to estimate GDP.
// The estimate is deliberately non-deterministic.
type Multiplier interface {
	Next() int
}

type RandomMultiplier struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomMultiplier draws uniformly from [MinGDPMultiplier, MaxGDPMultiplier].
// A zero seed means "seed from the clock".
func NewRandomMultiplier(seed uint64) *RandomMultiplier {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomMultiplier{rnd: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

func (m *RandomMultiplier) Next() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MinGDPMultiplier + m.rnd.IntN(MaxGDPMultiplier-MinGDPMultiplier+1)
}

type FixedMultiplier int

func (m FixedMultiplier) Next() int { return int(m) }
