package marketplace

import (
	"encoding/json"
	"time"
)

// ---------------------------------------------------------------------------
// Wire envelopes
// ---------------------------------------------------------------------------

// apiError is the platform's error body
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// postingListRequest is the body of the posting list endpoint
type postingListRequest struct {
	Filter postingListFilter `json:"filter"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

type postingListFilter struct {
	Since  time.Time `json:"since"`
	To     time.Time `json:"to"`
	Status string    `json:"status,omitempty"`
}

// postingListEnvelope wraps the posting list response. Postings are decoded
// in two passes so the verbatim record can be retained per posting.
type postingListEnvelope struct {
	Result struct {
		Postings []json.RawMessage `json:"postings"`
		HasNext  bool              `json:"has_next"`
	} `json:"result"`
}

// postingDetailRequest is the body of the posting detail endpoint
type postingDetailRequest struct {
	PostingNumber string `json:"posting_number"`
}

// postingDetailEnvelope wraps the posting detail response
type postingDetailEnvelope struct {
	Result json.RawMessage `json:"result"`
}

// productListRequest is the body of the product list endpoint
type productListRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// productListEnvelope wraps the product list response
type productListEnvelope struct {
	Result struct {
		Items   []json.RawMessage `json:"items"`
		Total   int64             `json:"total"`
		HasNext bool              `json:"has_next"`
	} `json:"result"`
}
