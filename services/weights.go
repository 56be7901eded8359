package services

import (
	"math"

	"any-democrat/models"
)

// ComputeWeights derives each record's selection weight from its raw weight
// and fills in the running cumulative total, which it returns.
//
// Weights are log-scaled so big statewide races don't dominate, and halved
// for incumbents. A raw weight of 1 or less has no positive logarithm and is
// clamped to zero, so the record can never be picked.
func ComputeWeights(records []*models.CandidateRecord) float64 {
	var cumulative float64
	for _, r := range records {
		r.Weight = candidateWeight(r.RawWeight, r.Incumbent)
		cumulative += r.Weight
		r.CumulativeWeight = cumulative
	}
	return cumulative
}

func candidateWeight(raw float64, incumbent bool) float64 {
	if raw <= 1 {
		return 0
	}
	w := math.Log(raw)
	if incumbent {
		w /= 2
	}
	return w
}
