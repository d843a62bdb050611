package sync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sellerdesk/backend/internal/domain/catalog"
	"github.com/sellerdesk/backend/internal/domain/fulfillment"
	"github.com/sellerdesk/backend/internal/domain/marketplace"
	"github.com/sellerdesk/backend/internal/domain/shop"
)

// ErrEmptyPostingNumber marks a record that cannot be keyed
var ErrEmptyPostingNumber = errors.New("sync: posting without posting number")

// PostingReconciler applies one page of raw postings to the local mirror.
// The store round-trip count per page is bounded by a small constant: one
// posting lookup, one product lookup, one order lookup and one bulk insert,
// plus per-record updates only for rows that actually changed.
type PostingReconciler struct {
	store  Store
	client marketplace.Client
	log    *zap.Logger
}

// NewPostingReconciler creates a reconciler over the given store and client
func NewPostingReconciler(store Store, client marketplace.Client, log *zap.Logger) *PostingReconciler {
	return &PostingReconciler{
		store:  store,
		client: client,
		log:    log.Named("posting-reconciler"),
	}
}

// ReconcilePage reconciles a page inside one transaction (commit per page,
// never per record). A record that cannot be mapped is logged and skipped;
// it stays in future sync windows and will be retried. An error from a bulk
// statement aborts the whole page and propagates to the orchestrator.
func (r *PostingReconciler) ReconcilePage(ctx context.Context, sh *shop.Shop, page []marketplace.RawPosting) (int, error) {
	page = dedupeByPostingNumber(page)
	if len(page) == 0 {
		return 0, nil
	}

	processed := 0
	err := r.store.Transaction(ctx, func(tx Store) error {
		n, err := r.reconcile(ctx, tx, sh, page)
		processed = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return processed, nil
}

func (r *PostingReconciler) reconcile(ctx context.Context, tx Store, sh *shop.Shop, page []marketplace.RawPosting) (int, error) {
	mapped := make([]PostingFields, 0, len(page))
	for _, raw := range page {
		fields := MapPosting(raw)
		if fields.PostingNumber == "" {
			r.log.Warn("Skipping unmappable posting record",
				zap.String("shop_id", sh.ID.String()),
				zap.Error(ErrEmptyPostingNumber),
			)
			continue
		}
		mapped = append(mapped, fields)
	}
	if len(mapped) == 0 {
		return 0, nil
	}

	existingByNumber, err := r.loadPostings(ctx, tx, sh.ID, mapped)
	if err != nil {
		return 0, err
	}
	productByOffer, err := r.loadProducts(ctx, tx, sh.ID, mapped)
	if err != nil {
		return 0, err
	}
	orderByNumber, err := r.loadOrders(ctx, tx, sh.ID, mapped)
	if err != nil {
		return 0, err
	}

	var (
		newOrders   []*fulfillment.Order
		newPostings []*fulfillment.Posting
		itemInserts []*fulfillment.PostingItem
		itemUpdates []*fulfillment.PostingItem
		itemDeletes []uuid.UUID
		deltas      []catalog.SalesDelta
		affected    []*fulfillment.Posting
		processed   int
	)

	now := time.Now()
	for _, fields := range mapped {
		order, ok := orderByNumber[fields.OrderNumber]
		if !ok {
			order = fulfillment.NewOrder(sh.ID, fields.RemoteOrderID, fields.OrderNumber)
			orderByNumber[fields.OrderNumber] = order
			newOrders = append(newOrders, order)
		}
		applyOrderFields(order, fields)

		posting, exists := existingByNumber[fields.PostingNumber]
		if !exists {
			posting = fulfillment.NewPosting(sh.ID, order.ID, fields.PostingNumber, fields.RemoteStatus)
			applyPostingFields(posting, fields, productByOffer)
			for _, item := range fields.Items {
				posting.Items = append(posting.Items, *buildItem(posting.ID, item))
			}
			newPostings = append(newPostings, posting)

			if !posting.OperationStatus.IsCancelled() {
				deltas = append(deltas, itemDeltas(fields.Items, productByOffer, 1, now)...)
			}
		} else {
			wasCancelled := posting.OperationStatus.IsCancelled()
			posting.ApplyRemoteStatus(fields.RemoteStatus)
			applyPostingFields(posting, fields, productByOffer)
			if err := tx.Postings().Save(ctx, posting); err != nil {
				return 0, err
			}

			ins, upd, del := diffItems(posting, fields.Items)
			itemInserts = append(itemInserts, ins...)
			itemUpdates = append(itemUpdates, upd...)
			itemDeletes = append(itemDeletes, del...)

			nowCancelled := posting.OperationStatus.IsCancelled()
			if wasCancelled != nowCancelled {
				sign := int64(1)
				if nowCancelled {
					sign = -1
				}
				deltas = append(deltas, itemDeltas(fields.Items, productByOffer, sign, now)...)
			}
		}
		affected = append(affected, posting)
		processed++
	}

	for _, order := range orderByNumber {
		if !containsOrder(newOrders, order) {
			if err := tx.Orders().Save(ctx, order); err != nil {
				return 0, err
			}
		}
	}
	if len(newOrders) > 0 {
		if err := tx.Orders().CreateBatch(ctx, newOrders); err != nil {
			return 0, err
		}
	}
	if len(newPostings) > 0 {
		if err := tx.Postings().CreateBatch(ctx, newPostings); err != nil {
			return 0, err
		}
	}
	if len(itemDeletes) > 0 {
		if err := tx.Postings().DeleteItems(ctx, itemDeletes); err != nil {
			return 0, err
		}
	}
	if len(itemUpdates) > 0 {
		if err := tx.Postings().UpdateItems(ctx, itemUpdates); err != nil {
			return 0, err
		}
	}
	if len(itemInserts) > 0 {
		if err := tx.Postings().InsertItems(ctx, itemInserts); err != nil {
			return 0, err
		}
	}

	if err := r.syncPackages(ctx, tx, sh, affected); err != nil {
		return 0, err
	}

	if len(deltas) > 0 {
		if err := tx.Products().ApplySalesDeltas(ctx, deltas); err != nil {
			return 0, err
		}
	}

	return processed, nil
}

// syncPackages decides per posting whether the tracking detail endpoint must
// be called: only when the remote status says tracking should exist and the
// list payload carried none. Detail failures are per-record: logged, skipped,
// retried naturally on the next pass.
func (r *PostingReconciler) syncPackages(ctx context.Context, tx Store, sh *shop.Shop, postings []*fulfillment.Posting) error {
	for _, posting := range postings {
		if !posting.NeedsTrackingDetail() {
			continue
		}

		detail, err := r.client.GetPostingDetail(ctx, sh.Credentials(), posting.PostingNumber)
		if err != nil {
			r.log.Warn("Tracking detail fetch failed",
				zap.String("posting_number", posting.PostingNumber),
				zap.Error(err),
			)
			continue
		}

		packages := make([]*fulfillment.Package, 0, len(detail.Packages))
		tracking := ""
		for _, rp := range detail.Packages {
			packages = append(packages, fulfillment.NewPackage(posting.ID, rp.Carrier, rp.TrackingNumber, rp.Status))
			if tracking == "" && rp.TrackingNumber != "" {
				tracking = rp.TrackingNumber
			}
		}
		if len(packages) == 0 && detail.TrackingNumber == "" {
			continue
		}
		if tracking == "" {
			tracking = detail.TrackingNumber
		}

		if err := tx.Postings().ReplacePackages(ctx, posting.ID, packages); err != nil {
			return err
		}
		if tracking != "" && tracking != posting.TrackingNumber {
			posting.TrackingNumber = tracking
			if err := tx.Postings().Save(ctx, posting); err != nil {
				return err
			}
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Bulk lookups
// ---------------------------------------------------------------------------

func (r *PostingReconciler) loadPostings(ctx context.Context, tx Store, shopID uuid.UUID, mapped []PostingFields) (map[string]*fulfillment.Posting, error) {
	numbers := make([]string, 0, len(mapped))
	for _, fields := range mapped {
		numbers = append(numbers, fields.PostingNumber)
	}
	existing, err := tx.Postings().FindByNumbers(ctx, shopID, numbers)
	if err != nil {
		return nil, err
	}
	byNumber := make(map[string]*fulfillment.Posting, len(existing))
	for _, posting := range existing {
		byNumber[posting.PostingNumber] = posting
	}
	return byNumber, nil
}

func (r *PostingReconciler) loadProducts(ctx context.Context, tx Store, shopID uuid.UUID, mapped []PostingFields) (map[string]*catalog.Product, error) {
	seen := make(map[string]struct{})
	offerIDs := make([]string, 0)
	for _, fields := range mapped {
		for _, offerID := range fields.SKUList {
			if _, ok := seen[offerID]; !ok {
				seen[offerID] = struct{}{}
				offerIDs = append(offerIDs, offerID)
			}
		}
	}
	if len(offerIDs) == 0 {
		return map[string]*catalog.Product{}, nil
	}
	products, err := tx.Products().FindByOfferIDs(ctx, shopID, offerIDs)
	if err != nil {
		return nil, err
	}
	byOffer := make(map[string]*catalog.Product, len(products))
	for _, product := range products {
		byOffer[product.OfferID] = product
	}
	return byOffer, nil
}

func (r *PostingReconciler) loadOrders(ctx context.Context, tx Store, shopID uuid.UUID, mapped []PostingFields) (map[string]*fulfillment.Order, error) {
	seen := make(map[string]struct{})
	numbers := make([]string, 0, len(mapped))
	for _, fields := range mapped {
		if _, ok := seen[fields.OrderNumber]; !ok {
			seen[fields.OrderNumber] = struct{}{}
			numbers = append(numbers, fields.OrderNumber)
		}
	}
	orders, err := tx.Orders().FindByNumbers(ctx, shopID, numbers)
	if err != nil {
		return nil, err
	}
	byNumber := make(map[string]*fulfillment.Order, len(orders))
	for _, order := range orders {
		byNumber[order.OrderNumber] = order
	}
	return byNumber, nil
}

// ---------------------------------------------------------------------------
// Record helpers
// ---------------------------------------------------------------------------

// dedupeByPostingNumber collapses duplicate posting numbers within one page,
// keeping the last occurrence (pages near pagination boundaries may repeat a
// posting; the last-seen values win).
func dedupeByPostingNumber(page []marketplace.RawPosting) []marketplace.RawPosting {
	last := make(map[string]int, len(page))
	for i, raw := range page {
		last[raw.PostingNumber] = i
	}
	out := make([]marketplace.RawPosting, 0, len(last))
	for i, raw := range page {
		if last[raw.PostingNumber] == i {
			out = append(out, raw)
		}
	}
	return out
}

func applyPostingFields(posting *fulfillment.Posting, fields PostingFields, productByOffer map[string]*catalog.Product) {
	posting.SKUList = fields.SKUList
	posting.TotalPrice = fields.TotalPrice
	posting.RawPayload = fields.Raw
	posting.InProcessAt = fields.InProcessAt
	posting.ShipmentDate = fields.ShipmentDate
	if fields.TrackingNumber != "" {
		posting.TrackingNumber = fields.TrackingNumber
	}
	posting.HasCostInfo = allHaveCostInfo(fields.SKUList, productByOffer)
	posting.Touch()
}

func applyOrderFields(order *fulfillment.Order, fields PostingFields) {
	order.Status = fields.RemoteStatus.String()
	order.ItemsAmount = fields.TotalPrice
	if !fields.OrderTotal.IsZero() {
		order.TotalAmount = fields.OrderTotal
	}
	order.DeliveryPrice = fields.DeliveryPrice
	order.Commission = fields.Commission
	if fields.InProcessAt != nil {
		order.OrderedAt = fields.InProcessAt
	}
	if fields.ShipmentDate != nil {
		order.ShippedAt = fields.ShipmentDate
	}
	switch fields.RemoteStatus {
	case marketplace.RemoteStatusDelivered:
		if order.DeliveredAt == nil {
			now := time.Now()
			order.DeliveredAt = &now
		}
	case marketplace.RemoteStatusCancelled, marketplace.RemoteStatusNotAccepted:
		if order.CancelledAt == nil {
			cancelledAt := fields.CancelledAt
			if cancelledAt == nil {
				now := time.Now()
				cancelledAt = &now
			}
			order.CancelledAt = cancelledAt
		}
	}
	order.Touch()
}

// allHaveCostInfo reports whether every referenced offer has a recorded
// purchase cost; used for the posting's denormalized has-cost-info flag
func allHaveCostInfo(offerIDs []string, productByOffer map[string]*catalog.Product) bool {
	if len(offerIDs) == 0 {
		return false
	}
	for _, offerID := range offerIDs {
		product, ok := productByOffer[offerID]
		if !ok || !product.HasCostInfo() {
			return false
		}
	}
	return true
}

func buildItem(postingID uuid.UUID, fields ItemFields) *fulfillment.PostingItem {
	return fulfillment.NewPostingItem(postingID, fields.OfferID, fields.SKU, fields.Name, fields.Quantity, fields.UnitPrice, fields.Discount)
}

// diffItems mirrors the upstream line-item list exactly: stale rows are
// removed, matching rows updated in place, new rows inserted. The posting's
// in-memory item slice is rewritten to the new state.
func diffItems(posting *fulfillment.Posting, items []ItemFields) (inserts, updates []*fulfillment.PostingItem, deletes []uuid.UUID) {
	existing := make(map[string]*fulfillment.PostingItem, len(posting.Items))
	for i := range posting.Items {
		existing[posting.Items[i].OfferID] = &posting.Items[i]
	}

	next := make([]fulfillment.PostingItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, fields := range items {
		seen[fields.OfferID] = struct{}{}
		if current, ok := existing[fields.OfferID]; ok {
			current.SKU = fields.SKU
			current.Name = fields.Name
			current.Quantity = fields.Quantity
			current.UnitPrice = fields.UnitPrice
			current.Discount = fields.Discount
			current.Total = fields.Total
			current.UpdatedAt = time.Now()
			updates = append(updates, current)
			next = append(next, *current)
		} else {
			item := buildItem(posting.ID, fields)
			inserts = append(inserts, item)
			next = append(next, *item)
		}
	}
	for i := range posting.Items {
		if _, ok := seen[posting.Items[i].OfferID]; !ok {
			deletes = append(deletes, posting.Items[i].ID)
		}
	}
	posting.Items = next
	return inserts, updates, deletes
}

// itemDeltas converts a posting's line items into sales-counter adjustments.
// Items whose offer is unknown in the local catalog produce no delta.
func itemDeltas(items []ItemFields, productByOffer map[string]*catalog.Product, sign int64, at time.Time) []catalog.SalesDelta {
	deltas := make([]catalog.SalesDelta, 0, len(items))
	for _, item := range items {
		product, ok := productByOffer[item.OfferID]
		if !ok {
			continue
		}
		deltas = append(deltas, catalog.SalesDelta{
			ProductID: product.ID,
			Quantity:  sign * int64(item.Quantity),
			SoldAt:    at,
		})
	}
	return deltas
}

func containsOrder(orders []*fulfillment.Order, order *fulfillment.Order) bool {
	for _, o := range orders {
		if o == order {
			return true
		}
	}
	return false
}
