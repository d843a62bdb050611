package marketplace

// RemoteStatus is a posting lifecycle status as reported by the marketplace.
// The vocabulary is owned by the remote platform; values outside this set may
// appear at any time and must be tolerated.
type RemoteStatus string

const (
	// RemoteStatusAwaitingApprove indicates the posting awaits seller confirmation
	RemoteStatusAwaitingApprove RemoteStatus = "awaiting_approve"
	// RemoteStatusAwaitingPackaging indicates the posting awaits packaging
	RemoteStatusAwaitingPackaging RemoteStatus = "awaiting_packaging"
	// RemoteStatusAwaitingDeliver indicates the posting is packed and awaits handover
	RemoteStatusAwaitingDeliver RemoteStatus = "awaiting_deliver"
	// RemoteStatusDelivering indicates the posting is with the carrier
	RemoteStatusDelivering RemoteStatus = "delivering"
	// RemoteStatusDriverPickup indicates the courier picked the posting up
	RemoteStatusDriverPickup RemoteStatus = "driver_pickup"
	// RemoteStatusDelivered indicates the posting reached the buyer
	RemoteStatusDelivered RemoteStatus = "delivered"
	// RemoteStatusCancelled indicates the posting was cancelled on the platform
	RemoteStatusCancelled RemoteStatus = "cancelled"
	// RemoteStatusNotAccepted indicates the sorting center rejected the posting
	RemoteStatusNotAccepted RemoteStatus = "not_accepted"
)

// String returns the string representation of RemoteStatus
func (s RemoteStatus) String() string {
	return string(s)
}

// IsKnown returns true if the status belongs to the documented vocabulary
func (s RemoteStatus) IsKnown() bool {
	switch s {
	case RemoteStatusAwaitingApprove, RemoteStatusAwaitingPackaging,
		RemoteStatusAwaitingDeliver, RemoteStatusDelivering, RemoteStatusDriverPickup,
		RemoteStatusDelivered, RemoteStatusCancelled, RemoteStatusNotAccepted:
		return true
	default:
		return false
	}
}

// IsCancelled returns true for statuses that terminate the posting on the platform
func (s RemoteStatus) IsCancelled() bool {
	return s == RemoteStatusCancelled || s == RemoteStatusNotAccepted
}

// TrackingExpected returns true if a posting in this status should already
// carry carrier tracking information
func (s RemoteStatus) TrackingExpected() bool {
	switch s {
	case RemoteStatusAwaitingDeliver, RemoteStatusDelivering, RemoteStatusDriverPickup, RemoteStatusDelivered:
		return true
	default:
		return false
	}
}
