package services

import (
	"sort"
	"strings"
	"time"

	"any-democrat/models"
	"any-democrat/utils"
)

type SummaryService struct {
	logger *utils.Logger
}

func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

// Generate aggregates records whose weights have already been computed.
func (s *SummaryService) Generate(records []*models.CandidateRecord, now time.Time) *models.Summary {
	summary := &models.Summary{
		ByChamber: make(map[string]int),
	}

	summary.TotalCandidates = len(records)
	for _, r := range records {
		if r.Incumbent {
			summary.Incumbents++
		}
		if now.Before(r.PrimaryElection) {
			summary.UpcomingPrimaries++
		}
		summary.ByChamber[r.Chamber]++
	}
	if len(records) > 0 {
		summary.TotalWeight = records[len(records)-1].CumulativeWeight
	}
	return summary
}

func (s *SummaryService) Log(r *models.Summary) {
	s.logger.Info("[summary] Loaded candidates: %d (incumbents: %d, upcoming primaries: %d)",
		r.TotalCandidates, r.Incumbents, r.UpcomingPrimaries)
	s.logger.Info("[summary] Cumulative weight: %.4f", r.TotalWeight)

	type chamberCount struct {
		chamber string
		count   int
	}
	var chambers []chamberCount
	for ch, n := range r.ByChamber {
		chambers = append(chambers, chamberCount{ch, n})
	}
	sort.Slice(chambers, func(i, j int) bool {
		if chambers[i].count != chambers[j].count {
			return chambers[i].count > chambers[j].count
		}
		return chambers[i].chamber < chambers[j].chamber
	})
	for _, cc := range chambers {
		s.logger.Debug("[summary]   %-30s %s (%d)", truncate(cc.chamber, 28), strings.Repeat("█", min(cc.count, 40)), cc.count)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
