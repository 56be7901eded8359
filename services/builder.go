package services

import (
	"sort"

	"any-democrat/models"
	"any-democrat/utils"
)

// feedDateLayout is how dates are written into published feeds.
const feedDateLayout = "2006-01-02"

// FeedBuilder joins sheet records into the published {head, rows} feeds.
type FeedBuilder struct {
	logger *utils.Logger
}

// NewFeedBuilder creates a FeedBuilder with the given logger.
func NewFeedBuilder(logger *utils.Logger) *FeedBuilder {
	return &FeedBuilder{logger: logger}
}

// BuildCandidates produces one row per candidate, joined with the race data
// of its state and chamber. Candidates without a matching race are skipped.
func (b *FeedBuilder) BuildCandidates(states map[models.StateKey]*models.SourceState, candidates []*models.SourceCandidate) *models.Feed {
	feed := &models.Feed{
		Head: append([]string(nil), models.CandidateHead...),
		Rows: make([][]any, 0, len(candidates)),
	}

	for _, c := range candidates {
		s, ok := states[c.Key()]
		if !ok {
			b.logger.Warn("[builder] No race for %s (%s %s), skipping", c.Name, c.State, c.Chamber)
			continue
		}

		var district any
		if c.District != nil {
			district = *c.District
		}

		feed.Rows = append(feed.Rows, []any{
			c.Name,
			c.State,
			c.Chamber,
			district,
			c.Incumbent,
			c.Pronouns,
			s.Reason,
			c.DonationURL,
			s.FilingDeadline.Format(feedDateLayout),
			s.PrimaryElection.Format(feedDateLayout),
			s.Weight,
			s.DetailURL,
		})
	}

	b.logger.Debug("[builder] Candidate feed has %d rows", len(feed.Rows))
	return feed
}

// BuildStates produces one row per race, ordered by state then chamber.
func (b *FeedBuilder) BuildStates(states map[models.StateKey]*models.SourceState) *models.Feed {
	sorted := make([]*models.SourceState, 0, len(states))
	for _, s := range states {
		sorted = append(sorted, s)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].State != sorted[j].State {
			return sorted[i].State < sorted[j].State
		}
		return sorted[i].Chamber < sorted[j].Chamber
	})

	feed := &models.Feed{
		Head: append([]string(nil), models.StateHead...),
		Rows: make([][]any, 0, len(sorted)),
	}
	for _, s := range sorted {
		feed.Rows = append(feed.Rows, []any{
			s.State,
			s.Chamber,
			s.Reason,
			s.FilingDeadline.Format(feedDateLayout),
			s.PrimaryElection.Format(feedDateLayout),
			s.Weight,
			s.DetailURL,
		})
	}
	return feed
}
