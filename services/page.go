package services

import (
	"context"
	"time"

	"any-democrat/utils"
)

// Page is everything the index page shows. Candidate is nil when no
// candidate could be loaded or picked; the panel then stays hidden.
type Page struct {
	Candidate *CandidateView
	States    []StateRow
}

// PageBuilder loads feeds, picks a candidate and renders the page.
type PageBuilder struct {
	feeds    *FeedService
	selector *Selector
	renderer *Renderer
	logger   *utils.Logger
}

// NewPageBuilder wires the page pipeline.
func NewPageBuilder(feeds *FeedService, selector *Selector, renderer *Renderer, logger *utils.Logger) *PageBuilder {
	return &PageBuilder{feeds: feeds, selector: selector, renderer: renderer, logger: logger}
}

// Build renders the page as of now. Load and parse failures are logged and
// leave the affected section empty; they never fail the page.
func (b *PageBuilder) Build(ctx context.Context, now time.Time) *Page {
	page := &Page{}

	feeds, err := b.feeds.Feeds(ctx)
	if err != nil {
		b.logger.Warn("[page] Feeds unavailable: %v", err)
		return page
	}

	page.Candidate, err = b.pick(feeds, now)
	if err != nil {
		b.logger.Warn("[page] No candidate: %v", err)
	}

	states, err := ParseStates(feeds.States)
	if err != nil {
		b.logger.Warn("[page] States feed rejected: %v", err)
		return page
	}
	page.States = RenderStates(states, now)
	return page
}

// PickCandidate makes one weighted random pick and renders it.
func (b *PageBuilder) PickCandidate(ctx context.Context, now time.Time) (*CandidateView, error) {
	feeds, err := b.feeds.Feeds(ctx)
	if err != nil {
		return nil, err
	}
	return b.pick(feeds, now)
}

func (b *PageBuilder) pick(feeds *Feeds, now time.Time) (*CandidateView, error) {
	records, err := ParseCandidates(feeds.Candidates)
	if err != nil {
		return nil, err
	}
	ComputeWeights(records)

	picked, err := b.selector.Pick(records)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("[page] Random candidate: %s (%s %s)", picked.Name, picked.State, picked.Chamber)
	return b.renderer.RenderCandidate(picked, now), nil
}
