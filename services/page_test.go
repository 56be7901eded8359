package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"any-democrat/models"
)

func newTestPageBuilder(t *testing.T, src FeedSource, rnd RandomSource) *PageBuilder {
	t.Helper()
	logger := newTestLogger()
	return NewPageBuilder(
		NewFeedService(src, time.Minute, time.Minute, nil, logger),
		NewSelector(rnd),
		newTestRenderer(t),
		logger,
	)
}

func TestPageBuilderBuild(t *testing.T) {
	b := newTestPageBuilder(t, &stubSource{feeds: testFeeds(t)}, fixedSource(0))
	page := b.Build(context.Background(), day(2019, time.December, 15))

	require.NotNil(t, page.Candidate)
	assert.Equal(t, "Ron Reynolds", page.Candidate.Name1)
	assert.Equal(t, "running as an incumbent", page.Candidate.Verb)
	assert.Equal(t, "Texas primary election is coming up 3/3/2020", page.Candidate.Election)

	require.Len(t, page.States, 2)
	assert.Equal(t, FirstStateRowID, page.States[0].ID)
	assert.Equal(t, "North Carolina", page.States[0].Cells[0].Text)
	assert.False(t, page.States[0].Cells[3].Struck)
	assert.True(t, page.States[1].Cells[3].Struck)
}

func TestPageBuilderBuildLoadsOnce(t *testing.T) {
	src := &stubSource{feeds: testFeeds(t)}
	logger := newTestLogger()
	b := NewPageBuilder(
		NewFeedService(src, 0, time.Minute, nil, logger),
		NewSelector(fixedSource(0)),
		newTestRenderer(t),
		logger,
	)

	page := b.Build(context.Background(), day(2019, time.December, 15))
	require.NotNil(t, page.Candidate)
	assert.Len(t, page.States, 2)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestPageBuilderSwallowsLoadErrors(t *testing.T) {
	b := newTestPageBuilder(t, &stubSource{err: errors.New("offline")}, fixedSource(0))
	page := b.Build(context.Background(), time.Now())

	assert.Nil(t, page.Candidate)
	assert.Empty(t, page.States)
}

func TestPageBuilderInvalidCandidatesKeepsStates(t *testing.T) {
	feeds := testFeeds(t)
	feeds.Candidates = &models.Feed{Head: []string{"name"}, Rows: [][]any{{"Alice"}}}

	b := newTestPageBuilder(t, &stubSource{feeds: feeds}, fixedSource(0))
	page := b.Build(context.Background(), time.Now())

	assert.Nil(t, page.Candidate)
	assert.Len(t, page.States, 2)
}

func TestPickCandidateLast(t *testing.T) {
	b := newTestPageBuilder(t, &stubSource{feeds: testFeeds(t)}, fixedSource(0.999))
	view, err := b.PickCandidate(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Cal Cunningham", view.Name1)
	assert.Equal(t, "the U.S. Senate in North Carolina", view.Race)
}
