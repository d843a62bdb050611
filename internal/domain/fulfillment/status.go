package fulfillment

import (
	"github.com/sellerdesk/backend/internal/domain/marketplace"
)

// OperationStatus is the locally-owned lifecycle stage of a posting. It is
// reconciled against the remote status on every sync but may be manually
// overridden by an operator, in which case the override is preserved until
// cleared, with the single exception of remote cancellation, which always
// wins.
type OperationStatus string

const (
	// OperationStatusAwaitingStock - goods are not yet available for packing
	OperationStatusAwaitingStock OperationStatus = "awaiting_stock"
	// OperationStatusAwaitingPack - goods available, posting awaits packing
	OperationStatusAwaitingPack OperationStatus = "awaiting_pack"
	// OperationStatusAwaitingShip - packed, awaiting carrier handover
	OperationStatusAwaitingShip OperationStatus = "awaiting_ship"
	// OperationStatusInTransit - handed to the carrier
	OperationStatusInTransit OperationStatus = "in_transit"
	// OperationStatusDelivered - received by the buyer
	OperationStatusDelivered OperationStatus = "delivered"
	// OperationStatusCancelled - absorbing cancellation state
	OperationStatusCancelled OperationStatus = "cancelled"
)

// String returns the string representation of OperationStatus
func (s OperationStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is one of the defined stages
func (s OperationStatus) IsValid() bool {
	switch s {
	case OperationStatusAwaitingStock, OperationStatusAwaitingPack,
		OperationStatusAwaitingShip, OperationStatusInTransit,
		OperationStatusDelivered, OperationStatusCancelled:
		return true
	default:
		return false
	}
}

// IsCancelled returns true for the cancellation state
func (s OperationStatus) IsCancelled() bool {
	return s == OperationStatusCancelled
}

// classifyRemote maps a remote status onto the local stage vocabulary.
// The second return value is false for statuses outside the known vocabulary.
func classifyRemote(remote marketplace.RemoteStatus) (OperationStatus, bool) {
	switch remote {
	case marketplace.RemoteStatusAwaitingApprove:
		return OperationStatusAwaitingStock, true
	case marketplace.RemoteStatusAwaitingPackaging:
		return OperationStatusAwaitingPack, true
	case marketplace.RemoteStatusAwaitingDeliver:
		return OperationStatusAwaitingShip, true
	case marketplace.RemoteStatusDelivering, marketplace.RemoteStatusDriverPickup:
		return OperationStatusInTransit, true
	case marketplace.RemoteStatusDelivered:
		return OperationStatusDelivered, true
	case marketplace.RemoteStatusCancelled, marketplace.RemoteStatusNotAccepted:
		return OperationStatusCancelled, true
	default:
		return "", false
	}
}

// InitialOperationStatus derives the local stage for a posting seen for the
// first time. Unknown remote statuses start at the earliest stage.
func InitialOperationStatus(remote marketplace.RemoteStatus) OperationStatus {
	if s, ok := classifyRemote(remote); ok {
		return s
	}
	return OperationStatusAwaitingStock
}

// NextOperationStatus computes the new local stage from the current stage,
// the latest remote status and whether the current stage was set manually.
//
// Rules, in order:
//   - remote cancellation always wins, even over a manual override;
//   - a manual override is otherwise preserved untouched;
//   - a known remote status maps deterministically onto the local stage;
//   - an unknown remote status leaves the local stage unchanged.
//
// The function is idempotent: applying the same remote status twice yields
// the same result.
func NextOperationStatus(current OperationStatus, remote marketplace.RemoteStatus, manualOverride bool) OperationStatus {
	if remote.IsCancelled() {
		return OperationStatusCancelled
	}
	if current == "" {
		return InitialOperationStatus(remote)
	}
	if manualOverride {
		return current
	}
	if s, ok := classifyRemote(remote); ok {
		return s
	}
	return current
}
