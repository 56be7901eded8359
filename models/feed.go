package models

// Feed is the tabular wire format shared by the candidate and state endpoints:
// an ordered list of field names and rows of values in the same order.
type Feed struct {
	Head []string `json:"head"`
	Rows [][]any  `json:"rows"`
}

// Candidate feed columns, in the order they are published.
const (
	FieldName            = "name"
	FieldState           = "state"
	FieldChamber         = "chamber"
	FieldDistrict        = "district"
	FieldIncumbent       = "incumbent"
	FieldPronouns        = "pronouns"
	FieldReason          = "reason"
	FieldDonationURL     = "donation_url"
	FieldFilingDeadline  = "filing_deadline"
	FieldPrimaryElection = "primary_election"
	FieldWeight          = "weight"
	FieldDetailURL       = "detail_url"
)

// CandidateHead is the head of a published candidate feed.
var CandidateHead = []string{
	FieldName, FieldState, FieldChamber, FieldDistrict, FieldIncumbent,
	FieldPronouns, FieldReason, FieldDonationURL, FieldFilingDeadline,
	FieldPrimaryElection, FieldWeight, FieldDetailURL,
}

// StateHead is the head of a published state feed.
var StateHead = []string{
	FieldState, FieldChamber, FieldReason, FieldFilingDeadline,
	FieldPrimaryElection, FieldWeight, FieldDetailURL,
}

// Summary holds aggregate figures over a loaded candidate list.
type Summary struct {
	TotalCandidates   int
	Incumbents        int
	TotalWeight       float64
	UpcomingPrimaries int
	ByChamber         map[string]int
}
