package marketplace

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Raw payload types
// ---------------------------------------------------------------------------

// RawPosting is one shipment record as returned by the marketplace list
// endpoint. All monetary fields arrive as strings and may be absent or
// malformed; use the Parse helpers below rather than converting directly.
type RawPosting struct {
	PostingNumber  string              `json:"posting_number"`
	OrderID        int64               `json:"order_id"`
	OrderNumber    string              `json:"order_number"`
	Status         string              `json:"status"`
	TrackingNumber string              `json:"tracking_number"`
	InProcessAt    string              `json:"in_process_at"`
	ShipmentDate   string              `json:"shipment_date"`
	DeliveringDate string              `json:"delivering_date"`
	CancelledAt    string              `json:"cancelled_at"`
	Products       []RawPostingProduct `json:"products"`
	Financial      *RawFinancialData   `json:"financial_data"`

	// Raw is the verbatim upstream payload, kept for audit and re-derivation.
	// It is populated by the transport adapter, not by JSON decoding.
	Raw json.RawMessage `json:"-"`
}

// RemoteStatus returns the posting status as a RemoteStatus value
func (p *RawPosting) RemoteStatus() RemoteStatus {
	return RemoteStatus(p.Status)
}

// RawPostingProduct is one line item inside a raw posting
type RawPostingProduct struct {
	SKU      int64  `json:"sku"`
	OfferID  string `json:"offer_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Discount string `json:"discount"`
}

// RawFinancialData carries order-level money figures from the platform.
// The declared order amount is frequently stale; line items are authoritative.
type RawFinancialData struct {
	OrderAmount      string `json:"order_amount"`
	DeliveryPrice    string `json:"delivery_price"`
	CommissionAmount string `json:"commission_amount"`
}

// RawPostingDetail is the detail-endpoint payload; it extends the list record
// with package/tracking information.
type RawPostingDetail struct {
	RawPosting
	Packages []RawPackage `json:"packages"`
}

// RawPackage is one physical parcel attached to a posting
type RawPackage struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
	Status         string `json:"status"`
}

// RawProduct is one catalog record from the marketplace product list endpoint
type RawProduct struct {
	ProductID int64  `json:"product_id"`
	OfferID   string `json:"offer_id"`
	SKU       int64  `json:"sku"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	OldPrice  string `json:"old_price"`
	Stock     int    `json:"stock"`
	Archived  bool   `json:"archived"`
}

// ---------------------------------------------------------------------------
// Fail-safe coercions
// ---------------------------------------------------------------------------

// ParseDecimal converts a platform money string to a decimal. Absent or
// malformed input yields (zero, false); callers treat false as "unknown"
// rather than an error so one bad field never aborts a whole page.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// DecimalOrZero converts a platform money string, degrading to zero
func DecimalOrZero(s string) decimal.Decimal {
	d, _ := ParseDecimal(s)
	return d
}

// ParseInt converts a platform integer string, degrading to (0, false)
func ParseInt(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseTime converts an RFC3339 platform timestamp, returning nil when the
// field is absent or unparseable
func ParseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
