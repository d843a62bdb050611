package sync

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellerdesk/backend/internal/domain/marketplace"
)

// PostingFields is the mapped local representation of one raw posting.
type PostingFields struct {
	PostingNumber  string
	RemoteOrderID  int64
	OrderNumber    string
	RemoteStatus   marketplace.RemoteStatus
	TrackingNumber string

	// TotalPrice is computed as Σ(price × quantity) over line items; the
	// platform's declared order total is kept separately because it is
	// frequently absent or stale.
	TotalPrice    decimal.Decimal
	OrderTotal    decimal.Decimal
	DeliveryPrice decimal.Decimal
	Commission    decimal.Decimal

	SKUList []string
	Items   []ItemFields

	InProcessAt  *time.Time
	ShipmentDate *time.Time
	CancelledAt  *time.Time

	Raw []byte
}

// ItemFields is the mapped representation of one line item
type ItemFields struct {
	OfferID   string
	SKU       int64
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
}

// MapPosting converts a raw upstream posting into local posting fields. It is
// a pure function: no I/O, and it never fails. Absent or malformed upstream
// fields degrade to zero values per the platform coercion helpers.
func MapPosting(raw marketplace.RawPosting) PostingFields {
	fields := PostingFields{
		PostingNumber:  raw.PostingNumber,
		RemoteOrderID:  raw.OrderID,
		OrderNumber:    raw.OrderNumber,
		RemoteStatus:   raw.RemoteStatus(),
		TrackingNumber: raw.TrackingNumber,
		TotalPrice:     decimal.Zero,
		OrderTotal:     decimal.Zero,
		DeliveryPrice:  decimal.Zero,
		Commission:     decimal.Zero,
		InProcessAt:    marketplace.ParseTime(raw.InProcessAt),
		ShipmentDate:   marketplace.ParseTime(raw.ShipmentDate),
		CancelledAt:    marketplace.ParseTime(raw.CancelledAt),
		Raw:            raw.Raw,
	}

	seen := make(map[string]struct{}, len(raw.Products))
	for _, rp := range raw.Products {
		item := ItemFields{
			OfferID:   itemOfferID(rp),
			SKU:       rp.SKU,
			Name:      rp.Name,
			Quantity:  rp.Quantity,
			UnitPrice: marketplace.DecimalOrZero(rp.Price),
			Discount:  marketplace.DecimalOrZero(rp.Discount),
		}
		item.Total = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Sub(item.Discount)
		fields.Items = append(fields.Items, item)
		fields.TotalPrice = fields.TotalPrice.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))

		if _, ok := seen[item.OfferID]; !ok && item.OfferID != "" {
			seen[item.OfferID] = struct{}{}
			fields.SKUList = append(fields.SKUList, item.OfferID)
		}
	}

	if raw.Financial != nil {
		fields.OrderTotal = marketplace.DecimalOrZero(raw.Financial.OrderAmount)
		fields.DeliveryPrice = marketplace.DecimalOrZero(raw.Financial.DeliveryPrice)
		fields.Commission = marketplace.DecimalOrZero(raw.Financial.CommissionAmount)
	}

	return fields
}

// itemOfferID returns the seller-facing SKU code for a line item, falling
// back to the numeric platform SKU when the offer ID is absent
func itemOfferID(rp marketplace.RawPostingProduct) string {
	if rp.OfferID != "" {
		return rp.OfferID
	}
	if rp.SKU != 0 {
		return strconv.FormatInt(rp.SKU, 10)
	}
	return ""
}
