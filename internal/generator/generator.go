// Package generator picks the next character to draw.
package generator

import (
	"errors"
	"math/rand"
	"time"
)

// ErrEmptyPool is returned when there is nothing to pick from.
var ErrEmptyPool = errors.New("character pool is empty")

// Generator produces randomized question characters.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Next selects a character uniformly from pool, avoiding exclude whenever
// the pool holds anything else.
func (g *Generator) Next(pool []string, exclude string) (string, error) {
	return g.NextWeighted(pool, exclude, nil, 0)
}

// NextWeighted selects a character with a bias toward weak characters: each
// weak character weighs 1+factor, every other character 1. The exclusion
// rule of Next still applies.
func (g *Generator) NextWeighted(pool []string, exclude string, weakSet map[string]struct{}, factor float64) (string, error) {
	candidates := candidatesFor(pool, exclude)
	if len(candidates) == 0 {
		return "", ErrEmptyPool
	}
	if len(weakSet) == 0 || factor <= 0 {
		return candidates[g.rnd.Intn(len(candidates))], nil
	}

	weights := make([]float64, len(candidates))
	total := 0.0
	for i, c := range candidates {
		w := 1.0
		if _, ok := weakSet[c]; ok {
			w += factor
		}
		weights[i] = w
		total += w
	}

	r := g.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return candidates[i], nil
		}
	}
	return candidates[len(candidates)-1], nil
}

func candidatesFor(pool []string, exclude string) []string {
	if exclude == "" {
		return pool
	}
	out := make([]string, 0, len(pool))
	for _, c := range pool {
		if c != exclude {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return pool
	}
	return out
}
