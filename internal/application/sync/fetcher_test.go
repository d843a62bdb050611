package sync_test

import (
	"context"
	"errors"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsync "github.com/sellerdesk/backend/internal/application/sync"
	"github.com/sellerdesk/backend/internal/domain/marketplace"
)

// fakeClient serves scripted pages for pager and reconciler tests.
type fakeClient struct {
	mu stdsync.Mutex

	postingPages []postingPage
	listCalls    []marketplace.ListPostingsRequest

	productPages []productPage
	productCalls []marketplace.ListProductsRequest

	details     map[string]*marketplace.RawPostingDetail
	detailErr   error
	detailCalls []string
}

type postingPage struct {
	postings []marketplace.RawPosting
	hasNext  bool
	err      error
}

type productPage struct {
	products []marketplace.RawProduct
	total    int64
	hasNext  bool
	err      error
}

var _ marketplace.Client = (*fakeClient)(nil)

func (f *fakeClient) ListPostings(_ context.Context, _ marketplace.Credentials, req marketplace.ListPostingsRequest) (*marketplace.ListPostingsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := len(f.listCalls)
	f.listCalls = append(f.listCalls, req)
	if idx >= len(f.postingPages) {
		return &marketplace.ListPostingsResponse{}, nil
	}
	page := f.postingPages[idx]
	if page.err != nil {
		return nil, page.err
	}
	return &marketplace.ListPostingsResponse{Postings: page.postings, HasNext: page.hasNext}, nil
}

func (f *fakeClient) GetPostingDetail(_ context.Context, _ marketplace.Credentials, postingNumber string) (*marketplace.RawPostingDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.detailCalls = append(f.detailCalls, postingNumber)
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	detail, ok := f.details[postingNumber]
	if !ok {
		return nil, marketplace.ErrPostingNotFound
	}
	return detail, nil
}

func (f *fakeClient) ListProducts(_ context.Context, _ marketplace.Credentials, req marketplace.ListProductsRequest) (*marketplace.ListProductsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := len(f.productCalls)
	f.productCalls = append(f.productCalls, req)
	if idx >= len(f.productPages) {
		return &marketplace.ListProductsResponse{}, nil
	}
	page := f.productPages[idx]
	if page.err != nil {
		return nil, page.err
	}
	return &marketplace.ListProductsResponse{Products: page.products, Total: page.total, HasNext: page.hasNext}, nil
}

func rawPosting(number string) marketplace.RawPosting {
	return marketplace.RawPosting{PostingNumber: number, Status: "awaiting_packaging"}
}

func TestPostingPagerContinuation(t *testing.T) {
	cfg := appsync.FetchConfig{
		BatchSize:           2,
		IncrementalLookback: 7 * 24 * time.Hour,
		FullLookback:        360 * 24 * time.Hour,
	}

	t.Run("continues only on has-next and a full page", func(t *testing.T) {
		client := &fakeClient{postingPages: []postingPage{
			{postings: []marketplace.RawPosting{rawPosting("1"), rawPosting("2")}, hasNext: true},
			{postings: []marketplace.RawPosting{rawPosting("3"), rawPosting("4")}, hasNext: true},
			{postings: []marketplace.RawPosting{rawPosting("5")}, hasNext: true},
		}}
		pager := appsync.NewPostingPager(client, marketplace.Credentials{}, appsync.ModeIncremental, cfg)

		page, hasNext, err := pager.Next(context.Background())
		require.NoError(t, err)
		assert.Len(t, page, 2)
		assert.True(t, hasNext)

		page, hasNext, err = pager.Next(context.Background())
		require.NoError(t, err)
		assert.Len(t, page, 2)
		assert.True(t, hasNext)

		// Partial page ends pagination even though upstream still claims more.
		page, hasNext, err = pager.Next(context.Background())
		require.NoError(t, err)
		assert.Len(t, page, 1)
		assert.False(t, hasNext)

		// Exhausted pager never calls the client again.
		page, hasNext, err = pager.Next(context.Background())
		require.NoError(t, err)
		assert.Nil(t, page)
		assert.False(t, hasNext)
		assert.Len(t, client.listCalls, 3)
	})

	t.Run("stops when upstream clears has-next", func(t *testing.T) {
		client := &fakeClient{postingPages: []postingPage{
			{postings: []marketplace.RawPosting{rawPosting("1"), rawPosting("2")}, hasNext: false},
		}}
		pager := appsync.NewPostingPager(client, marketplace.Credentials{}, appsync.ModeIncremental, cfg)

		page, hasNext, err := pager.Next(context.Background())
		require.NoError(t, err)
		assert.Len(t, page, 2)
		assert.False(t, hasNext)
	})

	t.Run("offset advances by page size", func(t *testing.T) {
		client := &fakeClient{postingPages: []postingPage{
			{postings: []marketplace.RawPosting{rawPosting("1"), rawPosting("2")}, hasNext: true},
			{postings: []marketplace.RawPosting{rawPosting("3"), rawPosting("4")}, hasNext: false},
		}}
		pager := appsync.NewPostingPager(client, marketplace.Credentials{}, appsync.ModeIncremental, cfg)

		_, _, err := pager.Next(context.Background())
		require.NoError(t, err)
		_, _, err = pager.Next(context.Background())
		require.NoError(t, err)

		require.Len(t, client.listCalls, 2)
		assert.Equal(t, 0, client.listCalls[0].Offset)
		assert.Equal(t, 2, client.listCalls[1].Offset)
		assert.Equal(t, 2, client.listCalls[0].Limit)
	})

	t.Run("error finishes the pager", func(t *testing.T) {
		wantErr := errors.New("transport down")
		client := &fakeClient{postingPages: []postingPage{{err: wantErr}}}
		pager := appsync.NewPostingPager(client, marketplace.Credentials{}, appsync.ModeIncremental, cfg)

		_, _, err := pager.Next(context.Background())
		assert.ErrorIs(t, err, wantErr)

		_, hasNext, err := pager.Next(context.Background())
		require.NoError(t, err)
		assert.False(t, hasNext)
		assert.Len(t, client.listCalls, 1, "a failed pager must not retry by itself")
	})
}

func TestPostingPagerWindow(t *testing.T) {
	cfg := appsync.FetchConfig{
		BatchSize:           100,
		IncrementalLookback: 7 * 24 * time.Hour,
		FullLookback:        360 * 24 * time.Hour,
	}

	tests := []struct {
		name string
		mode appsync.Mode
		want time.Duration
	}{
		{"incremental uses the short window", appsync.ModeIncremental, 7 * 24 * time.Hour},
		{"full uses the repair window", appsync.ModeFull, 360 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{}
			pager := appsync.NewPostingPager(client, marketplace.Credentials{}, tt.mode, cfg)

			_, _, err := pager.Next(context.Background())
			require.NoError(t, err)

			require.Len(t, client.listCalls, 1)
			req := client.listCalls[0]
			assert.Equal(t, tt.want, req.To.Sub(req.Since))
			assert.WithinDuration(t, time.Now(), req.To, time.Minute)
		})
	}
}

func TestPostingPagerProgressEstimate(t *testing.T) {
	client := &fakeClient{postingPages: []postingPage{
		{postings: make([]marketplace.RawPosting, 100), hasNext: true},
		{postings: make([]marketplace.RawPosting, 50), hasNext: false},
	}}
	pager := appsync.NewPostingPager(client, marketplace.Credentials{}, appsync.ModeIncremental, appsync.DefaultFetchConfig())

	assert.Equal(t, 0, pager.ProgressEstimate())

	_, _, err := pager.Next(context.Background())
	require.NoError(t, err)
	mid := pager.ProgressEstimate()
	assert.Greater(t, mid, 0)
	assert.Less(t, mid, 100)

	_, _, err = pager.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 99, pager.ProgressEstimate(), "the estimate caps below completion")
}

func TestProductPager(t *testing.T) {
	t.Run("pages with the shared continuation rule", func(t *testing.T) {
		client := &fakeClient{productPages: []productPage{
			{products: []marketplace.RawProduct{{OfferID: "A"}, {OfferID: "B"}}, total: 3, hasNext: true},
			{products: []marketplace.RawProduct{{OfferID: "C"}}, total: 3, hasNext: true},
		}}
		pager := appsync.NewProductPager(client, marketplace.Credentials{}, 2)

		page, hasNext, err := pager.Next(context.Background())
		require.NoError(t, err)
		assert.Len(t, page, 2)
		assert.True(t, hasNext)

		page, hasNext, err = pager.Next(context.Background())
		require.NoError(t, err)
		assert.Len(t, page, 1)
		assert.False(t, hasNext)

		_, hasNext, err = pager.Next(context.Background())
		require.NoError(t, err)
		assert.False(t, hasNext)
		assert.Len(t, client.productCalls, 2)
	})

	t.Run("progress uses the reported total", func(t *testing.T) {
		client := &fakeClient{productPages: []productPage{
			{products: make([]marketplace.RawProduct, 10), total: 40, hasNext: true},
		}}
		pager := appsync.NewProductPager(client, marketplace.Credentials{}, 10)

		_, _, err := pager.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 25, pager.ProgressEstimate())
	})
}
