package coop

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"coop_shift_notifier/internal/domain/shift"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultWindowBlocks      = 2 // The grid pages by week, so two blocks cover two weeks
	defaultFetchTimeout      = 30 * time.Second
	defaultRequestsPerSecond = 1.0
)

// PageFetcher performs an authenticated GET against the member-services site.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (status int, body []byte, err error)
}

// FetcherOptions configures the fetch window and request pacing.
type FetcherOptions struct {
	BaseURL           string
	WindowBlocks      int
	Timeout           time.Duration // Per block request
	RequestsPerSecond float64
}

// Fetcher builds a shift catalog by walking the paginated grid.
type Fetcher struct {
	baseURL   *url.URL
	window    int
	timeout   time.Duration
	limiter   *rate.Limiter
	extractor *Extractor
	logger    *logrus.Entry
	now       func() time.Time
}

func NewFetcher(opts FetcherOptions, extractor *Extractor, logger *logrus.Entry) (*Fetcher, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", opts.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", opts.BaseURL)
	}
	if opts.WindowBlocks <= 0 {
		opts.WindowBlocks = DefaultWindowBlocks
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultFetchTimeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRequestsPerSecond
	}
	return &Fetcher{
		baseURL:   base,
		window:    opts.WindowBlocks,
		timeout:   opts.Timeout,
		limiter:   rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		extractor: extractor,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// BlockURL is the grid page for block i of the window starting today.
func (f *Fetcher) BlockURL(block, committeeID int, today time.Time) string {
	return f.baseURL.JoinPath(
		"services", "shifts",
		strconv.Itoa(block), strconv.Itoa(committeeID), "0",
		today.Format("2006-01-02"),
	).String()
}

// FetchCatalog requests every block of the window in order through client and
// concatenates the extracted days. Any failing block fails the whole catalog
// with a *shift.FetchError.
func (f *Fetcher) FetchCatalog(ctx context.Context, client PageFetcher, committeeID int) (shift.Catalog, error) {
	today := f.now()
	catalog := shift.Catalog{FetchedAt: today, CommitteeID: committeeID}

	for i := 0; i < f.window; i++ {
		pageURL := f.BlockURL(i, committeeID, today)
		days, err := f.fetchBlock(ctx, client, i, pageURL)
		if err != nil {
			return shift.Catalog{}, err
		}
		f.logger.WithFields(logrus.Fields{"block": i, "url": pageURL, "days": len(days)}).Debug("Fetched shift block")
		catalog.Days = append(catalog.Days, days...)
	}
	return catalog, nil
}

func (f *Fetcher) fetchBlock(ctx context.Context, client PageFetcher, block int, pageURL string) ([]shift.DayBlock, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, &shift.FetchError{URL: pageURL, Block: block, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	blockCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	status, body, err := client.Fetch(blockCtx, pageURL)
	if err != nil {
		return nil, &shift.FetchError{URL: pageURL, Block: block, Err: err}
	}
	if status < 200 || status > 299 {
		return nil, &shift.FetchError{URL: pageURL, Block: block, StatusCode: status}
	}

	days, err := f.extractor.Extract(bytes.NewReader(body), f.baseURL)
	if err != nil {
		return nil, &shift.FetchError{URL: pageURL, Block: block, Err: err}
	}
	return days, nil
}

// Source binds a Fetcher to one authenticated client so callers only choose
// the committee.
type Source struct {
	fetcher *Fetcher
	client  PageFetcher
}

func NewSource(fetcher *Fetcher, client PageFetcher) *Source {
	return &Source{fetcher: fetcher, client: client}
}

func (s *Source) FetchCatalog(ctx context.Context, committeeID int) (shift.Catalog, error) {
	return s.fetcher.FetchCatalog(ctx, s.client, committeeID)
}
