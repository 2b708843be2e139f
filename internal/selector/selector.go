// Package selector picks one banner candidate per request.
//
// Sampling is two-stage: a tier (the set of candidates sharing one show
// ratio) is drawn first, then a candidate is drawn uniformly inside it. Each
// tier's mass is its weight divided by the sum of the distinct weights, so a
// tier counts once no matter how many candidates it holds. This is not
// per-candidate weighted sampling: with weights {10, 1, 1, 1} the single
// weight-10 candidate wins 10/11 of the draws. Existing placements are
// priced against this behaviour, keep it.
package selector

import (
	"math/rand"
	"sort"

	"github.com/baharkarakas/adledger/internal/models"
)

// Rand is the random source. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) Intn(n int) int   { return rand.Intn(n) }

// Default uses the package-level math/rand source, which is safe for
// concurrent use.
var Default Rand = globalRand{}

// Select returns a candidate, or false when both candidates and defaults are
// empty. Defaults are only consulted when there are no candidates.
func Select(rng Rand, candidates, defaults []models.Candidate) (models.Candidate, bool) {
	if rng == nil {
		rng = Default
	}
	if len(candidates) == 0 {
		if len(defaults) == 0 {
			return models.Candidate{}, false
		}
		return defaults[rng.Intn(len(defaults))], true
	}

	ratios := distinctWeights(candidates)
	if len(ratios) == 1 {
		return candidates[rng.Intn(len(candidates))], true
	}

	w := ratios[tierIndex(ratios, rng.Float64())]
	tier := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Weight == w {
			tier = append(tier, c)
		}
	}
	return tier[rng.Intn(len(tier))], true
}

// distinctWeights returns the distinct weights in descending order.
func distinctWeights(cs []models.Candidate) []int {
	seen := make(map[int]struct{}, len(cs))
	out := make([]int, 0, len(cs))
	for _, c := range cs {
		if _, ok := seen[c.Weight]; ok {
			continue
		}
		seen[c.Weight] = struct{}{}
		out = append(out, c.Weight)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// tierIndex maps u in [0,1) onto the cumulative distribution over ratios.
// Rounding can leave the last interval end just under 1; such draws fall
// into the last tier.
func tierIndex(ratios []int, u float64) int {
	total := 0
	for _, r := range ratios {
		total += r
	}
	end := 0.0
	for i, r := range ratios {
		end += float64(r) / float64(total)
		if u < end {
			return i
		}
	}
	return len(ratios) - 1
}
