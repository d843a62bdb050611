package marketplace

import (
	"context"
	"errors"
	"time"
)

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	// ErrUnavailable indicates a transient transport failure (network, 5xx).
	// Calls failing with this error are retried at the adapter boundary.
	ErrUnavailable = errors.New("marketplace: platform temporarily unavailable")
	// ErrRequestFailed indicates the platform rejected the request
	ErrRequestFailed = errors.New("marketplace: platform request failed")
	// ErrInvalidResponse indicates an unparseable platform response
	ErrInvalidResponse = errors.New("marketplace: invalid platform response")
	// ErrAuthFailed indicates the shop credentials were rejected
	ErrAuthFailed = errors.New("marketplace: platform authentication failed")
	// ErrRateLimited indicates the platform throttled the request
	ErrRateLimited = errors.New("marketplace: platform rate limited")
	// ErrPostingNotFound indicates the detail endpoint knows no such posting
	ErrPostingNotFound = errors.New("marketplace: posting not found")
	// ErrInvalidRequest indicates a malformed request on our side
	ErrInvalidRequest = errors.New("marketplace: invalid request")
)

// ---------------------------------------------------------------------------
// Requests / responses
// ---------------------------------------------------------------------------

// Credentials identify one shop against the marketplace API
type Credentials struct {
	ClientID string
	APIKey   string
}

// ListPostingsRequest is a windowed, paged posting list query
type ListPostingsRequest struct {
	Since  time.Time
	To     time.Time
	Status *RemoteStatus // nil = all lifecycle states
	Limit  int
	Offset int
}

// Validate checks the request bounds
func (r *ListPostingsRequest) Validate() error {
	if r.Since.IsZero() || r.To.IsZero() {
		return errors.New("marketplace: since and to are required")
	}
	if r.Since.After(r.To) {
		return errors.New("marketplace: since must be before to")
	}
	if r.Limit < 1 || r.Limit > 1000 {
		r.Limit = 100
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
	return nil
}

// ListPostingsResponse is one page of raw postings
type ListPostingsResponse struct {
	Postings []RawPosting
	// HasNext is the upstream "more pages" flag. It is not fully trusted:
	// pagination additionally requires a full page to continue.
	HasNext bool
}

// ListProductsRequest is a paged catalog list query
type ListProductsRequest struct {
	Limit  int
	Offset int
}

// ListProductsResponse is one page of raw catalog records
type ListProductsResponse struct {
	Products []RawProduct
	Total    int64
	HasNext  bool
}

// ---------------------------------------------------------------------------
// Client port
// ---------------------------------------------------------------------------

// Client is the port to the remote fulfillment platform. The concrete HTTP
// adapter lives in the infrastructure layer; the sync engine depends only on
// this interface.
type Client interface {
	// ListPostings returns one page of shipment records for the window
	ListPostings(ctx context.Context, creds Credentials, req ListPostingsRequest) (*ListPostingsResponse, error)

	// GetPostingDetail returns the detail payload, including packages/tracking
	GetPostingDetail(ctx context.Context, creds Credentials, postingNumber string) (*RawPostingDetail, error)

	// ListProducts returns one page of catalog records
	ListProducts(ctx context.Context, creds Credentials, req ListProductsRequest) (*ListProductsResponse, error)
}
