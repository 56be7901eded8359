package services

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"

	"any-democrat/models"
	"any-democrat/utils"
)

// strictPolicy strips any markup pasted into spreadsheet cells.
var strictPolicy = bluemonday.StrictPolicy()

// Cleaner normalises sheet records before they are published.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// CleanCandidates normalises text fields, drops unnamed candidates and
// removes duplicates of the same person in the same race.
func (c *Cleaner) CleanCandidates(raw []*models.SourceCandidate) []*models.SourceCandidate {
	seen := make(map[string]struct{})
	result := make([]*models.SourceCandidate, 0, len(raw))

	for _, r := range raw {
		cand := *r
		cand.Name = normaliseText(r.Name)
		cand.State = normaliseText(r.State)
		cand.Chamber = normaliseText(r.Chamber)
		cand.Pronouns = strings.ToLower(normaliseText(r.Pronouns))
		cand.DonationURL = strings.TrimSpace(r.DonationURL)

		if cand.Name == "" {
			c.logger.Warn("[cleaner] Dropping unnamed candidate in %s %s", cand.State, cand.Chamber)
			continue
		}

		key := candidateKey(&cand)
		if _, dup := seen[key]; dup {
			c.logger.Debug("[cleaner] Duplicate candidate skipped: %s", key)
			continue
		}
		seen[key] = struct{}{}

		result = append(result, &cand)
	}

	c.logger.Info("[cleaner] Cleaned %d → %d candidates (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// CleanStates normalises the text fields of every race.
func (c *Cleaner) CleanStates(raw map[models.StateKey]*models.SourceState) map[models.StateKey]*models.SourceState {
	result := make(map[models.StateKey]*models.SourceState, len(raw))
	for _, r := range raw {
		s := *r
		s.State = normaliseText(r.State)
		s.Chamber = normaliseText(r.Chamber)
		s.Reason = normaliseText(r.Reason)
		s.DetailURL = strings.TrimSpace(r.DetailURL)
		result[s.Key()] = &s
	}
	return result
}

func candidateKey(c *models.SourceCandidate) string {
	district := ""
	if c.District != nil {
		district = fmt.Sprint(*c.District)
	}
	return strings.Join([]string{c.State, c.Chamber, district, c.Name}, "|")
}

// normaliseText strips markup, composes Unicode to NFC and collapses whitespace.
func normaliseText(s string) string {
	s = html.UnescapeString(strictPolicy.Sanitize(s))
	s = norm.NFC.String(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
