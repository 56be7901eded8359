package services

import (
	"errors"
	"math/rand/v2"

	"any-democrat/models"
)

var (
	// ErrNoCandidates is returned when there is nothing to pick from.
	ErrNoCandidates = errors.New("selector: no candidates")
	// ErrNoWeight is returned when every candidate has zero weight.
	ErrNoWeight = errors.New("selector: total weight is zero")
)

// RandomSource yields uniform values in [0, 1).
type RandomSource interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// DefaultRandom is the process-wide source, safe for concurrent use.
var DefaultRandom RandomSource = globalSource{}

// Selector performs weighted random picks over records whose cumulative
// weights have been computed.
type Selector struct {
	rand RandomSource
}

// NewSelector creates a Selector drawing from src; nil means DefaultRandom.
func NewSelector(src RandomSource) *Selector {
	if src == nil {
		src = DefaultRandom
	}
	return &Selector{rand: src}
}

// Pick scales a uniform draw to the total cumulative weight and returns the
// first record whose cumulative weight exceeds it.
func (s *Selector) Pick(records []*models.CandidateRecord) (*models.CandidateRecord, error) {
	if len(records) == 0 {
		return nil, ErrNoCandidates
	}

	total := records[len(records)-1].CumulativeWeight
	if total <= 0 {
		return nil, ErrNoWeight
	}

	cutoff := s.rand.Float64() * total
	for _, r := range records {
		if r.CumulativeWeight > cutoff {
			return r, nil
		}
	}

	// Only reachable if the source returns 1.0; treat it as the top of the range.
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Weight > 0 {
			return records[i], nil
		}
	}
	return nil, ErrNoWeight
}
