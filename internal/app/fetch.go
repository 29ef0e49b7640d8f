package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"bizreview/internal/adapters/observability"
	"bizreview/internal/domain"
)

// Default soft minimum result counts per fetch mode.
const (
	DefaultListingTarget  = 20
	DefaultCombinedTarget = 60
)

// Snapshot is one incremental state of the growing tables: full, normalized,
// monotonically non-shrinking. Reviews is only populated in combined mode.
type Snapshot struct {
	Places  []domain.Place
	Reviews []domain.Review
}

// Stream is a pull-based sequence of snapshots. The consumer drives it via
// Next; cancelling the context passed to Fetch, or calling Close, stops the
// walk after the in-flight page (dispatched detail workers still complete,
// no further pages are requested). Err reports a fatal detail-lookup failure
// after the stream is drained.
type Stream struct {
	ch        chan Snapshot
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
	err       error
}

func (s *Stream) Next(ctx context.Context) (Snapshot, bool) {
	select {
	case snap, ok := <-s.ch:
		return snap, ok
	case <-s.done:
		return Snapshot{}, false
	case <-ctx.Done():
		return Snapshot{}, false
	}
}

// Close abandons the stream: the producer stops yielding and terminates
// after the in-flight page. Safe to call more than once, and safe even when
// the consumer never cancels the Fetch context.
func (s *Stream) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Stream) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Stream) fail(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

// Fetcher walks the places text-search pagination, issuing bounded-
// concurrency detail lookups and yielding a snapshot per completed lookup.
type Fetcher struct {
	client    domain.PlacesClient
	workers   int64
	pageDelay time.Duration
}

func NewFetcher(client domain.PlacesClient, workers int, pageDelay time.Duration) *Fetcher {
	if workers <= 0 {
		workers = 10
	}
	return &Fetcher{client: client, workers: int64(workers), pageDelay: pageDelay}
}

// FetchOptions control one acquisition run.
type FetchOptions struct {
	Category    string
	Location    string // "City,+Country" form, interpolated into the query
	Target      int    // soft minimum result count; 0 picks the mode default
	WithReviews bool   // carry embedded reviews into snapshots
}

// Fetch starts the paginated walk and returns its snapshot stream.
func (f *Fetcher) Fetch(ctx context.Context, opts FetchOptions) *Stream {
	if opts.Target <= 0 {
		if opts.WithReviews {
			opts.Target = DefaultCombinedTarget
		} else {
			opts.Target = DefaultListingTarget
		}
	}
	st := &Stream{ch: make(chan Snapshot), done: make(chan struct{})}
	go f.run(ctx, opts, st)
	return st
}

type detailResult struct {
	res map[string]any
	det map[string]any
	err error
}

func (f *Fetcher) run(ctx context.Context, opts FetchOptions, st *Stream) {
	defer close(st.ch)

	query := fmt.Sprintf("%s in %s", opts.Category, opts.Location)
	city := opts.Location

	var places []domain.Place
	var reviews []domain.Review
	token := ""

	for {
		page, err := f.client.TextSearch(ctx, query, token)
		if err != nil {
			// Silent truncation: the snapshots already yielded stay valid.
			log.Warn().Err(err).Str("query", query).Msg("text search failed, ending fetch")
			observability.ObserveFetchPage("truncated")
			return
		}
		if !page.HasResults {
			observability.ObserveFetchPage("exhausted")
			return
		}

		// One detail lookup per result under a bounded pool. Workers are
		// side-effect-free; only this goroutine appends to the tables.
		results := make(chan detailResult)
		go f.lookupPage(ctx, page.Results, results)

		for out := range results {
			if st.Err() != nil || st.closed() {
				continue // drain remaining workers after a failure or close
			}
			if out.err != nil {
				st.fail(out.err)
				continue
			}

			place, warns := MapPlace(out.res, out.det, city, time.Now(), f.client.PhotoURL)
			for _, w := range warns {
				log.Debug().Str("place", w.PlaceID).Str("field", w.Field).Msg(w.Reason)
			}
			places = append(places, place)
			if opts.WithReviews {
				reviews = append(reviews, MapReviews(place.PlaceID, place.Name, out.det)...)
			}

			snap := Snapshot{Places: NormalizePlaces(places)}
			if opts.WithReviews {
				snap.Reviews = NormalizeReviews(reviews)
			}
			select {
			case st.ch <- snap:
				observability.ObserveSnapshot()
			case <-st.done:
			case <-ctx.Done():
				st.fail(ctx.Err())
			}
		}

		if st.Err() != nil || st.closed() {
			observability.ObserveFetchPage("truncated")
			return
		}
		observability.ObserveFetchPage("ok")

		if len(places) >= opts.Target {
			return
		}
		token = page.NextPageToken
		if token == "" {
			return
		}
		// The next-page token takes a moment to activate server-side.
		if !sleepCtx(ctx, f.pageDelay) {
			return
		}
	}
}

// lookupPage fans the page's results out to detail lookups and closes the
// channel once every worker finished.
func (f *Fetcher) lookupPage(ctx context.Context, results []map[string]any, out chan<- detailResult) {
	defer close(out)

	sem := semaphore.NewWeighted(f.workers)
	var wg sync.WaitGroup
	for _, res := range results {
		if err := sem.Acquire(ctx, 1); err != nil {
			out <- detailResult{err: err}
			break
		}
		wg.Add(1)
		go func(res map[string]any) {
			defer wg.Done()
			defer sem.Release(1)
			det, err := f.client.Details(ctx, lookupStr(res, "place_id"))
			out <- detailResult{res: res, det: det, err: err}
		}(res)
	}
	wg.Wait()
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
