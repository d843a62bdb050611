package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sellerdesk/backend/internal/domain/marketplace"
)

// maxResponseSize is the maximum allowed response size from the platform (10MB)
const maxResponseSize = 10 * 1024 * 1024

const (
	pathPostingList   = "/v3/posting/list"
	pathPostingDetail = "/v3/posting/get"
	pathProductList   = "/v2/product/list"
)

// HTTPClient implements the marketplace.Client port over the platform's JSON
// API. Credentials travel per request, so one client instance serves every
// shop.
type HTTPClient struct {
	config     *ClientConfig
	httpClient *http.Client
	log        *zap.Logger
}

// NewHTTPClient creates a platform API client
func NewHTTPClient(config *ClientConfig, log *zap.Logger) (*HTTPClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &HTTPClient{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		log: log.Named("marketplace-client"),
	}, nil
}

var _ marketplace.Client = (*HTTPClient)(nil)

// ListPostings returns one page of shipment records for the window
func (c *HTTPClient) ListPostings(ctx context.Context, creds marketplace.Credentials, req marketplace.ListPostingsRequest) (*marketplace.ListPostingsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", marketplace.ErrInvalidRequest, err)
	}

	body := postingListRequest{
		Filter: postingListFilter{
			Since: req.Since,
			To:    req.To,
		},
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.Status != nil {
		body.Filter.Status = string(*req.Status)
	}

	respBody, err := c.doRequest(ctx, creds, pathPostingList, body)
	if err != nil {
		return nil, err
	}

	var envelope postingListEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("%w: failed to parse posting list: %v", marketplace.ErrInvalidResponse, err)
	}

	postings := make([]marketplace.RawPosting, 0, len(envelope.Result.Postings))
	for _, raw := range envelope.Result.Postings {
		var posting marketplace.RawPosting
		if err := json.Unmarshal(raw, &posting); err != nil {
			return nil, fmt.Errorf("%w: failed to parse posting record: %v", marketplace.ErrInvalidResponse, err)
		}
		posting.Raw = raw
		postings = append(postings, posting)
	}

	return &marketplace.ListPostingsResponse{
		Postings: postings,
		HasNext:  envelope.Result.HasNext,
	}, nil
}

// GetPostingDetail returns the detail payload, including packages/tracking
func (c *HTTPClient) GetPostingDetail(ctx context.Context, creds marketplace.Credentials, postingNumber string) (*marketplace.RawPostingDetail, error) {
	if postingNumber == "" {
		return nil, fmt.Errorf("%w: posting number is required", marketplace.ErrInvalidRequest)
	}

	respBody, err := c.doRequest(ctx, creds, pathPostingDetail, postingDetailRequest{PostingNumber: postingNumber})
	if err != nil {
		return nil, err
	}

	var envelope postingDetailEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("%w: failed to parse posting detail: %v", marketplace.ErrInvalidResponse, err)
	}
	if len(envelope.Result) == 0 {
		return nil, marketplace.ErrPostingNotFound
	}

	var detail marketplace.RawPostingDetail
	if err := json.Unmarshal(envelope.Result, &detail); err != nil {
		return nil, fmt.Errorf("%w: failed to parse posting detail: %v", marketplace.ErrInvalidResponse, err)
	}
	detail.Raw = envelope.Result

	return &detail, nil
}

// ListProducts returns one page of catalog records
func (c *HTTPClient) ListProducts(ctx context.Context, creds marketplace.Credentials, req marketplace.ListProductsRequest) (*marketplace.ListProductsResponse, error) {
	if req.Limit < 1 || req.Limit > 1000 {
		req.Limit = 100
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	respBody, err := c.doRequest(ctx, creds, pathProductList, productListRequest{
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		return nil, err
	}

	var envelope productListEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("%w: failed to parse product list: %v", marketplace.ErrInvalidResponse, err)
	}

	products := make([]marketplace.RawProduct, 0, len(envelope.Result.Items))
	for _, raw := range envelope.Result.Items {
		var product marketplace.RawProduct
		if err := json.Unmarshal(raw, &product); err != nil {
			return nil, fmt.Errorf("%w: failed to parse product record: %v", marketplace.ErrInvalidResponse, err)
		}
		products = append(products, product)
	}

	return &marketplace.ListProductsResponse{
		Products: products,
		Total:    envelope.Result.Total,
		HasNext:  envelope.Result.HasNext,
	}, nil
}

// doRequest posts a JSON body and returns the raw response, retrying
// transient failures with capped exponential backoff.
func (c *HTTPClient) doRequest(ctx context.Context, creds marketplace.Credentials, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marketplace: failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.config.RetryBaseDelay << (attempt - 1)
			if delay > 10*time.Second {
				delay = 10 * time.Second
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			c.log.Debug("Retrying platform request",
				zap.String("path", path),
				zap.Int("attempt", attempt),
			)
		}

		respBody, err := c.doAttempt(ctx, creds, path, payload)
		if err == nil {
			return respBody, nil
		}
		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *HTTPClient) doAttempt(ctx context.Context, creds marketplace.Credentials, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("marketplace: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Client-Id", creds.ClientID)
	req.Header.Set("Api-Key", creds.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", marketplace.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("marketplace: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, mapStatusError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

// mapStatusError translates HTTP failures to the domain error vocabulary
func mapStatusError(status int, body []byte) error {
	var apiErr apiError
	detail := ""
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		detail = ": " + apiErr.Message
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d%s", marketplace.ErrAuthFailed, status, detail)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: HTTP %d%s", marketplace.ErrPostingNotFound, status, detail)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: HTTP %d%s", marketplace.ErrRateLimited, status, detail)
	case status >= 500:
		return fmt.Errorf("%w: HTTP %d%s", marketplace.ErrUnavailable, status, detail)
	default:
		return fmt.Errorf("%w: HTTP %d%s", marketplace.ErrRequestFailed, status, detail)
	}
}

// isRetryable reports whether a failed attempt is worth repeating
func isRetryable(err error) bool {
	return errors.Is(err, marketplace.ErrUnavailable) || errors.Is(err, marketplace.ErrRateLimited)
}
