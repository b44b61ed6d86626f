package megasena

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Aggregator fetches a bounded window of historical draws from the
// upstream API with concurrent workers, all protected by one shared
// circuit breaker.
type Aggregator struct {
	client      *APIClient
	breaker     *Breaker
	window      int
	concurrency int
	logger      Logger
}

// NewAggregator creates an aggregator over the given client and breaker
func NewAggregator(client *APIClient, breaker *Breaker, window, concurrency int, logger Logger) *Aggregator {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	if concurrency <= 0 {
		concurrency = DefaultFetchConcurrency
	}
	return &Aggregator{
		client:      client,
		breaker:     breaker,
		window:      window,
		concurrency: concurrency,
		logger:      logger,
	}
}

// LatestDrawNumber asks the upstream for the most recent draw number.
// The call runs through the breaker; any failure, including an open
// breaker, surfaces as ErrAPIConnection.
func (a *Aggregator) LatestDrawNumber(ctx context.Context) (int, error) {
	result, err := a.breaker.Call(func() (any, error) {
		return a.client.LatestDraw(ctx)
	})
	if err != nil {
		return 0, ErrAPIConnection.WithDetails("failed to fetch latest draw").WithCause(err)
	}
	return result.(RawDraw).Number(1), nil
}

// FetchHistoricalWindow fans out concurrent fetches over the last
// window of draw numbers and returns the raw draws sorted ascending by
// draw number. When the breaker opens mid-batch no further fetches are
// dispatched; in-flight fetches drain and the whole call fails with
// ErrAPIConnection wrapping the open condition.
func (a *Aggregator) FetchHistoricalWindow(ctx context.Context) ([]RawDraw, error) {
	latest, err := a.LatestDrawNumber(ctx)
	if err != nil {
		return nil, err
	}

	start := latest - a.window
	if start < 1 {
		start = 1
	}
	cutoff := time.Now().AddDate(0, 0, -RecencyWindowDays)

	a.logger.Info("Fetching draws %d..%d with %d workers", start, latest, a.concurrency)

	var (
		mu     sync.Mutex
		draws  []RawDraw
		opened atomic.Bool
	)

	g := new(errgroup.Group)
	g.SetLimit(a.concurrency)
	for number := start; number <= latest; number++ {
		if opened.Load() {
			break
		}
		g.Go(func() error {
			draw, err := a.fetchDraw(ctx, number, cutoff)
			if err != nil {
				if errors.Is(err, ErrCircuitOpen) {
					opened.Store(true)
				}
				return nil
			}
			if draw != nil {
				mu.Lock()
				draws = append(draws, draw)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if opened.Load() {
		return nil, ErrAPIConnection.
			WithDetails("historical fetch aborted, breaker tripped mid-batch").
			WithCause(ErrCircuitOpen)
	}

	// Completion order is nondeterministic; restore draw-number order
	sort.Slice(draws, func(i, j int) bool {
		return draws[i].Number(0) < draws[j].Number(0)
	})

	a.logger.Info("Fetched %d draws from the upstream window", len(draws))
	return draws, nil
}

// fetchDraw fetches one draw through the breaker and applies the
// recency cutoff. An open breaker propagates so the batch can stop;
// ordinary per-draw failures are swallowed and reported as absent.
func (a *Aggregator) fetchDraw(ctx context.Context, number int, cutoff time.Time) (RawDraw, error) {
	result, err := a.breaker.Call(func() (any, error) {
		return a.client.DrawByNumber(ctx, number)
	})
	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			return nil, err
		}
		a.logger.Debug("Draw %d fetch failed: %v", number, err)
		return nil, nil
	}

	draw := result.(RawDraw)
	dateStr := draw.DateString()
	if dateStr == "" {
		return nil, nil
	}

	date, err := ParseDrawDate(dateStr)
	if err != nil {
		// Unparseable dates are not a rejection reason at this stage
		return draw, nil
	}
	if date.Before(cutoff) {
		return nil, nil
	}
	return draw, nil
}
