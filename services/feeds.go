package services

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"any-democrat/models"
	"any-democrat/sheets"
	"any-democrat/storage"
	"any-democrat/utils"
)

const feedsCacheKey = "feeds"

// Feeds is the pair of published feeds.
type Feeds struct {
	Candidates *models.Feed
	States     *models.Feed
}

// FeedSource produces fresh feeds.
type FeedSource interface {
	Load(ctx context.Context) (*Feeds, error)
}

// SheetSource builds feeds from the states and candidates CSV sheets.
type SheetSource struct {
	client        *sheets.Client
	cleaner       *Cleaner
	builder       *FeedBuilder
	statesURL     string
	candidatesURL string
}

// NewSheetSource creates a SheetSource over the two sheet URLs.
func NewSheetSource(client *sheets.Client, cleaner *Cleaner, builder *FeedBuilder, statesURL, candidatesURL string) *SheetSource {
	return &SheetSource{
		client:        client,
		cleaner:       cleaner,
		builder:       builder,
		statesURL:     statesURL,
		candidatesURL: candidatesURL,
	}
}

func (s *SheetSource) Load(ctx context.Context) (*Feeds, error) {
	states, candidates, err := s.client.LoadAll(ctx, s.statesURL, s.candidatesURL)
	if err != nil {
		return nil, err
	}
	states = s.cleaner.CleanStates(states)
	candidates = s.cleaner.CleanCandidates(candidates)

	return &Feeds{
		Candidates: s.builder.BuildCandidates(states, candidates),
		States:     s.builder.BuildStates(states),
	}, nil
}

// RemoteSource loads prebuilt feeds from JSON endpoints. With no states URL
// the states feed is empty.
type RemoteSource struct {
	loader        *Loader
	candidatesURL string
	statesURL     string
}

// NewRemoteSource creates a RemoteSource over the two feed URLs.
func NewRemoteSource(loader *Loader, candidatesURL, statesURL string) *RemoteSource {
	return &RemoteSource{loader: loader, candidatesURL: candidatesURL, statesURL: statesURL}
}

func (s *RemoteSource) Load(ctx context.Context) (*Feeds, error) {
	candidates, err := s.loader.Fetch(ctx, s.candidatesURL)
	if err != nil {
		return nil, err
	}

	states := &models.Feed{Head: append([]string(nil), models.StateHead...), Rows: [][]any{}}
	if s.statesURL != "" {
		if states, err = s.loader.Fetch(ctx, s.statesURL); err != nil {
			return nil, err
		}
	}
	return &Feeds{Candidates: candidates, States: states}, nil
}

// FeedService serves feeds from a FeedSource, caching them for a TTL. A TTL
// of zero or less disables caching. Concurrent refreshes are collapsed into
// one load that runs detached from any single caller.
type FeedService struct {
	source      FeedSource
	cache       *cache.Cache
	group       singleflight.Group
	ttl         time.Duration
	loadTimeout time.Duration
	export      storage.FeedWriter
	summary     *SummaryService
	logger      *utils.Logger
}

// NewFeedService creates a FeedService. export may be nil; a loadTimeout of
// zero or less leaves shared loads unbounded.
func NewFeedService(source FeedSource, ttl, loadTimeout time.Duration, export storage.FeedWriter, logger *utils.Logger) *FeedService {
	return &FeedService{
		source:      source,
		cache:       cache.New(ttl, 2*ttl),
		ttl:         ttl,
		loadTimeout: loadTimeout,
		export:      export,
		summary:     NewSummaryService(logger),
		logger:      logger,
	}
}

// Feeds returns the cached feeds, loading them if absent or expired. A caller
// whose ctx ends returns early; the shared load keeps running for the others.
func (s *FeedService) Feeds(ctx context.Context) (*Feeds, error) {
	if s.caching() {
		if v, ok := s.cache.Get(feedsCacheKey); ok {
			return v.(*Feeds), nil
		}
	}

	ch := s.group.DoChan(feedsCacheKey, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		if s.loadTimeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, s.loadTimeout)
			defer cancel()
		}
		return s.refresh(loadCtx)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("feeds: wait: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Feeds), nil
	}
}

// Invalidate drops the cached feeds so the next call reloads them.
func (s *FeedService) Invalidate() {
	s.cache.Delete(feedsCacheKey)
}

func (s *FeedService) caching() bool {
	return s.ttl > 0
}

func (s *FeedService) refresh(ctx context.Context) (*Feeds, error) {
	start := time.Now()
	feeds, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("feeds: load: %w", err)
	}
	if s.caching() {
		s.cache.Set(feedsCacheKey, feeds, s.ttl)
	}
	s.logger.Info("[feeds] Refreshed in %v: %d candidates, %d races",
		time.Since(start).Round(time.Millisecond), len(feeds.Candidates.Rows), len(feeds.States.Rows))

	if records, err := ParseCandidates(feeds.Candidates); err != nil {
		s.logger.Warn("[feeds] Candidate feed does not validate: %v", err)
	} else {
		ComputeWeights(records)
		s.summary.Log(s.summary.Generate(records, time.Now()))
	}

	if s.export != nil {
		if err := s.export.WriteFeed(feeds.Candidates); err != nil {
			s.logger.Error("[feeds] Export failed: %v", err)
		}
	}
	return feeds, nil
}
