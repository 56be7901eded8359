package services

import (
	"errors"
	"math"
	"testing"

	"any-democrat/models"
)

type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

func weightedRecords(names ...string) []*models.CandidateRecord {
	records := make([]*models.CandidateRecord, len(names))
	for i, n := range names {
		records[i] = &models.CandidateRecord{Name: n, RawWeight: float64(10 * (i + 1))}
	}
	ComputeWeights(records)
	return records
}

func TestSelectorZeroPicksFirst(t *testing.T) {
	records := weightedRecords("A", "B", "C")
	got, err := NewSelector(fixedSource(0)).Pick(records)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if got.Name != "A" {
		t.Errorf("got %q, want A", got.Name)
	}
}

func TestSelectorNearOnePicksLast(t *testing.T) {
	records := weightedRecords("A", "B", "C")
	got, err := NewSelector(fixedSource(math.Nextafter(1, 0))).Pick(records)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if got.Name != "C" {
		t.Errorf("got %q, want C", got.Name)
	}
}

func TestSelectorBoundaries(t *testing.T) {
	records := weightedRecords("A", "B", "C")
	total := records[2].CumulativeWeight

	mid := (records[0].CumulativeWeight + records[1].CumulativeWeight) / 2
	got, err := NewSelector(fixedSource(mid / total)).Pick(records)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if got.Name != "B" {
		t.Errorf("got %q, want B", got.Name)
	}
}

func TestSelectorSkipsZeroWeight(t *testing.T) {
	records := []*models.CandidateRecord{
		{Name: "Zero", RawWeight: 1},
		{Name: "Real", RawWeight: 100},
	}
	ComputeWeights(records)

	got, err := NewSelector(fixedSource(0)).Pick(records)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if got.Name != "Real" {
		t.Errorf("got %q, want Real", got.Name)
	}

	got, err = NewSelector(fixedSource(1)).Pick(records)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if got.Name != "Real" {
		t.Errorf("source returning 1: got %q, want Real", got.Name)
	}
}

func TestSelectorErrors(t *testing.T) {
	s := NewSelector(fixedSource(0.5))

	if _, err := s.Pick(nil); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("empty: got %v, want ErrNoCandidates", err)
	}

	records := []*models.CandidateRecord{{Name: "A", RawWeight: 1}}
	ComputeWeights(records)
	if _, err := s.Pick(records); !errors.Is(err, ErrNoWeight) {
		t.Errorf("zero weight: got %v, want ErrNoWeight", err)
	}
}

func TestSelectorDefaultSource(t *testing.T) {
	records := weightedRecords("Only")
	got, err := NewSelector(nil).Pick(records)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if got.Name != "Only" {
		t.Errorf("got %q, want Only", got.Name)
	}
}
