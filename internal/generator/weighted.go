package generator

import (
	"math/rand"
	"sort"
)

// weightedChoice picks an index with probability proportional to its weight.
type weightedChoice struct {
	cumulative []int
	total      int
}

func newWeightedChoice(weights []int) weightedChoice {
	cumulative := make([]int, len(weights))
	total := 0
	for i, w := range weights {
		total += w
		cumulative[i] = total
	}
	return weightedChoice{cumulative: cumulative, total: total}
}

// pick maps one uniform draw in [0, total) onto the cumulative table.
func (w weightedChoice) pick(r *rand.Rand) int {
	x := r.Intn(w.total)
	return sort.SearchInts(w.cumulative, x+1)
}
