package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"any-democrat/models"
	"any-democrat/sheets"
)

type stubSource struct {
	calls atomic.Int32
	feeds *Feeds
	err   error
	delay time.Duration
}

func (s *stubSource) Load(ctx context.Context) (*Feeds, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.feeds, s.err
}

// gatedSource blocks each load until release is closed or ctx ends.
type gatedSource struct {
	calls   atomic.Int32
	feeds   *Feeds
	started chan struct{}
	release chan struct{}
}

func newGatedSource(feeds *Feeds) *gatedSource {
	return &gatedSource{feeds: feeds, started: make(chan struct{}), release: make(chan struct{})}
}

func (s *gatedSource) Load(ctx context.Context) (*Feeds, error) {
	if s.calls.Add(1) == 1 {
		close(s.started)
	}
	select {
	case <-s.release:
		return s.feeds, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type recordingWriter struct {
	mu    sync.Mutex
	feeds []*models.Feed
}

func (w *recordingWriter) WriteFeed(feed *models.Feed) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.feeds = append(w.feeds, feed)
	return nil
}

func testFeeds(t *testing.T) *Feeds {
	t.Helper()
	b := NewFeedBuilder(newTestLogger())
	states := sampleStates()
	return &Feeds{
		Candidates: b.BuildCandidates(states, []*models.SourceCandidate{
			{State: "Texas", Chamber: "House of Representatives", District: district(27), Name: "Ron Reynolds", Incumbent: true},
			{State: "North Carolina", Chamber: "U.S. Senate", Name: "Cal Cunningham"},
		}),
		States: b.BuildStates(states),
	}
}

func TestFeedServiceCaches(t *testing.T) {
	src := &stubSource{feeds: testFeeds(t)}
	w := &recordingWriter{}
	svc := NewFeedService(src, time.Minute, time.Minute, w, newTestLogger())

	for i := 0; i < 3; i++ {
		feeds, err := svc.Feeds(context.Background())
		require.NoError(t, err)
		assert.Len(t, feeds.Candidates.Rows, 2)
	}
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Len(t, w.feeds, 1)

	svc.Invalidate()
	_, err := svc.Feeds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestFeedServiceCollapsesConcurrentLoads(t *testing.T) {
	src := &stubSource{feeds: testFeeds(t), delay: 50 * time.Millisecond}
	svc := NewFeedService(src, time.Minute, time.Minute, nil, newTestLogger())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Feeds(context.Background())
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestFeedServiceDoesNotCacheErrors(t *testing.T) {
	src := &stubSource{err: errors.New("sheet down")}
	svc := NewFeedService(src, time.Minute, time.Minute, nil, newTestLogger())

	_, err := svc.Feeds(context.Background())
	assert.ErrorContains(t, err, "sheet down")
	_, err = svc.Feeds(context.Background())
	assert.Error(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestSheetSourceLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/states.csv":
			_, _ = w.Write([]byte("State,Chamber,Reason,Filing Deadline,Primary Election,Weight,Race Detail\n" +
				"Texas,House of Representatives,Redistricting,\"December 9, 2019\",\"March 3, 2020\",\"191,333\",https://ballotpedia.org/tx\n"))
		case "/candidates.csv":
			_, _ = w.Write([]byte("State,Chamber,District,Democratic Candidate(s)\n" +
				"Texas,House of Representatives,27,\"Ron Reynolds (i)\nByron Ross\"\n" +
				"Ohio,U.S. Senate,,Nobody\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	logger := newTestLogger()
	src := NewSheetSource(
		sheets.NewClient(5*time.Second, 1, logger),
		NewCleaner(logger),
		NewFeedBuilder(logger),
		srv.URL+"/states.csv",
		srv.URL+"/candidates.csv",
	)

	feeds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, feeds.Candidates.Rows, 2)
	assert.Len(t, feeds.States.Rows, 1)

	records, err := ParseCandidates(feeds.Candidates)
	require.NoError(t, err)
	assert.Equal(t, "Ron Reynolds", records[0].Name)
	assert.True(t, records[0].Incumbent)
	assert.Equal(t, "Byron Ross", records[1].Name)
}

func TestRemoteSourceLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(candidateFeedJSON))
	}))
	defer srv.Close()

	src := NewRemoteSource(NewLoader(5*time.Second, newTestLogger()), srv.URL, "")
	feeds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, feeds.Candidates.Rows, 2)
	assert.Empty(t, feeds.States.Rows)
	assert.Equal(t, models.StateHead, feeds.States.Head)
}

func TestFeedServiceCancelledCallerDoesNotFailOthers(t *testing.T) {
	src := newGatedSource(testFeeds(t))
	svc := NewFeedService(src, time.Minute, time.Minute, nil, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Feeds(ctx)
		firstErr <- err
	}()
	<-src.started

	type result struct {
		feeds *Feeds
		err   error
	}
	second := make(chan result, 1)
	go func() {
		feeds, err := svc.Feeds(context.Background())
		second <- result{feeds, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(src.release)
	res := <-second
	require.NoError(t, res.err)
	assert.Len(t, res.feeds.Candidates.Rows, 2)
	assert.Equal(t, int32(1), src.calls.Load())

	_, err := svc.Feeds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestFeedServiceLoadTimeout(t *testing.T) {
	src := newGatedSource(testFeeds(t))
	svc := NewFeedService(src, time.Minute, 20*time.Millisecond, nil, newTestLogger())

	_, err := svc.Feeds(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFeedServiceZeroTTLDisablesCache(t *testing.T) {
	src := &stubSource{feeds: testFeeds(t)}
	svc := NewFeedService(src, 0, time.Minute, nil, newTestLogger())

	for i := 0; i < 3; i++ {
		_, err := svc.Feeds(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), src.calls.Load())
}
