package repository

import (
	"errors"
	"time"

	"pawhome/internal/domain"
	"pawhome/internal/models"

	"gorm.io/gorm"
)

// ErrDuplicateActiveRequest is returned by Insert when the unique index on
// (listing_id, requester_id, active) rejects a second pending/approved request
// for the same pair.
var ErrDuplicateActiveRequest = errors.New("active adoption request already exists")

type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Insert creates the request relying on the database unique index for dedup.
// There is deliberately no existence pre-check here: two concurrent submitters
// both reach the INSERT and the index lets exactly one through.
func (r *RequestRepository) Insert(req *models.AdoptionRequest) error {
	active := true
	req.Active = &active
	if req.Status == "" {
		req.Status = domain.RequestStatusPending
	}
	if err := r.db.Create(req).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateActiveRequest
		}
		return err
	}
	return nil
}

// FindActive returns the pending or approved request for the pair, or
// gorm.ErrRecordNotFound. Rejected rows have a NULL active marker and are
// excluded, so they never block resubmission.
func (r *RequestRepository) FindActive(listingID, requesterID uint) (*models.AdoptionRequest, error) {
	var req models.AdoptionRequest
	err := r.db.Where("listing_id = ? AND requester_id = ? AND active IS NOT NULL", listingID, requesterID).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// FindLatest returns the most recent request for the pair regardless of
// status (rejected history included), or gorm.ErrRecordNotFound.
func (r *RequestRepository) FindLatest(listingID, requesterID uint) (*models.AdoptionRequest, error) {
	var req models.AdoptionRequest
	err := r.db.Where("listing_id = ? AND requester_id = ?", listingID, requesterID).
		Order("created_at DESC").First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *RequestRepository) GetByID(id uint) (*models.AdoptionRequest, error) {
	var req models.AdoptionRequest
	if err := r.db.Preload("Requester").First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// Delete hard-deletes the active request for the pair. Returns
// gorm.ErrRecordNotFound when nothing matched.
func (r *RequestRepository) Delete(listingID, requesterID uint) error {
	res := r.db.Where("listing_id = ? AND requester_id = ? AND active IS NOT NULL", listingID, requesterID).
		Delete(&models.AdoptionRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAllForListing hard-deletes every request referencing the listing,
// returning how many rows went. Safe to retry: a second run deletes zero.
func (r *RequestRepository) DeleteAllForListing(listingID uint) (int64, error) {
	res := r.db.Where("listing_id = ?", listingID).Delete(&models.AdoptionRequest{})
	return res.RowsAffected, res.Error
}

// Approve marks the request approved. The active marker stays set, so the
// uniqueness slot remains occupied.
func (r *RequestRepository) Approve(id uint) error {
	now := time.Now()
	return r.db.Model(&models.AdoptionRequest{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      domain.RequestStatusApproved,
			"approved_at": now,
		}).Error
}

// Reject marks the request rejected and clears the active marker in the same
// UPDATE, freeing the uniqueness slot for a later resubmission.
func (r *RequestRepository) Reject(id uint) error {
	now := time.Now()
	return r.db.Model(&models.AdoptionRequest{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      domain.RequestStatusRejected,
			"rejected_at": now,
			"active":      gorm.Expr("NULL"),
		}).Error
}

func (r *RequestRepository) ListByListingID(listingID uint, limit, offset int) ([]models.AdoptionRequest, error) {
	var list []models.AdoptionRequest
	err := r.db.Where("listing_id = ?", listingID).Preload("Requester").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *RequestRepository) ListByRequesterID(requesterID uint, limit, offset int) ([]models.AdoptionRequest, error) {
	var list []models.AdoptionRequest
	err := r.db.Where("requester_id = ?", requesterID).Preload("Listing").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
