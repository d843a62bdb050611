package sync

import (
	"context"
	"time"

	"github.com/sellerdesk/backend/internal/domain/marketplace"
)

// FetchConfig bounds the fetch windows and page size
type FetchConfig struct {
	// BatchSize is the page size requested from the platform
	BatchSize int
	// IncrementalLookback is the short window for frequent re-syncs
	IncrementalLookback time.Duration
	// FullLookback is the long repair window, bounded by the platform's
	// maximum supported lookback
	FullLookback time.Duration
}

// DefaultFetchConfig returns the standard windows
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		BatchSize:           100,
		IncrementalLookback: 7 * 24 * time.Hour,
		FullLookback:        360 * 24 * time.Hour,
	}
}

// Lookback returns the window duration for a mode
func (c FetchConfig) Lookback(mode Mode) time.Duration {
	if mode == ModeFull {
		return c.FullLookback
	}
	return c.IncrementalLookback
}

// PostingPager iterates the platform's posting list one page at a time.
// A pager is single-use and not restartable: a fresh sync run constructs a
// fresh pager starting at offset 0.
//
// Continuation requires BOTH the upstream has-next flag AND a full page.
// The upstream flag alone is not trusted: it has been observed stuck on true
// past the last page, and a partial page is a definitive end regardless of
// what the flag claims.
type PostingPager struct {
	client marketplace.Client
	creds  marketplace.Credentials
	since  time.Time
	to     time.Time
	limit  int
	offset int
	done   bool
}

// NewPostingPager creates a pager for one shop and mode
func NewPostingPager(client marketplace.Client, creds marketplace.Credentials, mode Mode, cfg FetchConfig) *PostingPager {
	now := time.Now()
	limit := cfg.BatchSize
	if limit < 1 {
		limit = DefaultFetchConfig().BatchSize
	}
	return &PostingPager{
		client: client,
		creds:  creds,
		since:  now.Add(-cfg.Lookback(mode)),
		to:     now,
		limit:  limit,
	}
}

// Next fetches the next page. It returns the page, whether more pages
// remain, and any transport error. Errors propagate untruncated: the
// orchestrator decides whether to fail the run.
func (p *PostingPager) Next(ctx context.Context) ([]marketplace.RawPosting, bool, error) {
	if p.done {
		return nil, false, nil
	}

	resp, err := p.client.ListPostings(ctx, p.creds, marketplace.ListPostingsRequest{
		Since:  p.since,
		To:     p.to,
		Limit:  p.limit,
		Offset: p.offset,
	})
	if err != nil {
		p.done = true
		return nil, false, err
	}

	p.offset += p.limit
	hasNext := resp.HasNext && len(resp.Postings) == p.limit
	p.done = !hasNext
	return resp.Postings, hasNext, nil
}

// ProgressEstimate returns a heuristic completion percentage. The true page
// count is unknown upfront, so the estimate converges towards but never
// reaches 100 until the run completes.
func (p *PostingPager) ProgressEstimate() int {
	if p.done {
		return 99
	}
	pct := p.offset * 100 / (p.offset + p.limit*3)
	if pct > 99 {
		pct = 99
	}
	return pct
}

// ProductPager iterates the platform's catalog list with the same
// continuation rule as PostingPager.
type ProductPager struct {
	client marketplace.Client
	creds  marketplace.Credentials
	limit  int
	offset int
	total  int64
	done   bool
}

// NewProductPager creates a single-use catalog pager
func NewProductPager(client marketplace.Client, creds marketplace.Credentials, batchSize int) *ProductPager {
	if batchSize < 1 {
		batchSize = DefaultFetchConfig().BatchSize
	}
	return &ProductPager{
		client: client,
		creds:  creds,
		limit:  batchSize,
	}
}

// Next fetches the next catalog page
func (p *ProductPager) Next(ctx context.Context) ([]marketplace.RawProduct, bool, error) {
	if p.done {
		return nil, false, nil
	}

	resp, err := p.client.ListProducts(ctx, p.creds, marketplace.ListProductsRequest{
		Limit:  p.limit,
		Offset: p.offset,
	})
	if err != nil {
		p.done = true
		return nil, false, err
	}

	p.offset += p.limit
	p.total = resp.Total
	hasNext := resp.HasNext && len(resp.Products) == p.limit
	p.done = !hasNext
	return resp.Products, hasNext, nil
}

// ProgressEstimate uses the platform-reported total when available
func (p *ProductPager) ProgressEstimate() int {
	if p.total > 0 {
		pct := int(int64(p.offset) * 100 / p.total)
		if pct > 99 {
			pct = 99
		}
		return pct
	}
	pct := p.offset * 100 / (p.offset + p.limit*3)
	if pct > 99 {
		pct = 99
	}
	return pct
}
