package domain

const (
	ListingStatusAvailable = "available"
	ListingStatusPending   = "pending"
	ListingStatusApproved  = "approved"
	ListingStatusRejected  = "rejected"
	ListingStatusAdopted   = "adopted"
)

const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// RequestStatusNone is the derived relation when a viewer holds no request
// against a listing. Cancelled requests are deleted outright, so they also
// surface as none.
const RequestStatusNone = "none"

const (
	NotifTypeAdoptionRequest   = "adoption_request"
	NotifTypeAdoptionCancelled = "adoption_cancelled"
	NotifTypeAdoptionApproved  = "adoption_approved"
	NotifTypeAdoptionRejected  = "adoption_rejected"
)
