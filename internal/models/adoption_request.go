package models

import "time"

// AdoptionRequest has no soft-delete column on purpose: cancellation and the
// listing-deletion cascade remove rows outright, which is what frees the
// uniqueness slot below for a later resubmission.
//
// Active is a marker for the dedup constraint: set (true) while the request is
// pending or approved, NULL once rejected. MySQL has no partial indexes, but
// its unique indexes allow repeated NULLs, so the composite index on
// (listing_id, requester_id, active) enforces at most one pending/approved
// request per pair while letting rejected history accumulate.
type AdoptionRequest struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ListingID   uint       `gorm:"not null;index;uniqueIndex:idx_requests_listing_requester_active" json:"listing_id"`
	RequesterID uint       `gorm:"not null;index;uniqueIndex:idx_requests_listing_requester_active" json:"requester_id"`
	OwnerID     uint       `gorm:"not null;index" json:"owner_id"`
	Status      string     `gorm:"size:20;not null;index" json:"status"` // pending, approved, rejected
	Active      *bool      `gorm:"uniqueIndex:idx_requests_listing_requester_active" json:"-"`
	ApprovedAt  *time.Time `json:"approved_at"`
	RejectedAt  *time.Time `json:"rejected_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Listing   Listing `gorm:"foreignKey:ListingID" json:"-"`
	Requester User    `gorm:"foreignKey:RequesterID" json:"-"`
}

func (AdoptionRequest) TableName() string {
	return "adoption_requests"
}
