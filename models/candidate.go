package models

import "time"

// CandidateRecord is one selectable candidate, built fresh from a candidate
// feed on every load and discarded after selection.
type CandidateRecord struct {
	Name            string
	State           string
	Chamber         string
	District        string
	Incumbent       bool
	Pronouns        string
	Reason          string
	DonationURL     string
	DetailURL       string
	FilingDeadline  time.Time
	PrimaryElection time.Time

	// RawWeight is the unscaled weight column from the feed.
	RawWeight float64
	// Weight and CumulativeWeight are derived by the weight calculator.
	Weight           float64
	CumulativeWeight float64
}

// StateRecord is one state-level race shown in the states table.
type StateRecord struct {
	State           string
	Chamber         string
	Reason          string
	FilingDeadline  time.Time
	PrimaryElection time.Time
	Weight          float64
	DetailURL       string
}

// Person is a single name parsed out of a spreadsheet candidate cell.
type Person struct {
	Name      string
	Incumbent bool
}

// StateKey identifies a race by state and chamber.
type StateKey struct {
	State   string
	Chamber string
}

// SourceState is a row of the states sheet.
type SourceState struct {
	State           string
	Chamber         string
	Reason          string
	FilingDeadline  time.Time
	PrimaryElection time.Time
	Weight          int64
	DetailURL       string
}

// Key returns the join key of the race.
func (s *SourceState) Key() StateKey {
	return StateKey{State: s.State, Chamber: s.Chamber}
}

// SourceCandidate is one person from the candidates sheet. District is nil
// for statewide races such as the U.S. Senate.
type SourceCandidate struct {
	State       string
	Chamber     string
	District    *int64
	Name        string
	Incumbent   bool
	Pronouns    string
	DonationURL string
}

// Key returns the join key of the candidate's race.
func (c *SourceCandidate) Key() StateKey {
	return StateKey{State: c.State, Chamber: c.Chamber}
}
