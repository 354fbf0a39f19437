package repository

import (
	"pawhome/internal/models"

	"gorm.io/gorm"
)

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(l *models.Listing) error {
	return r.db.Create(l).Error
}

func (r *ListingRepository) GetByID(id uint) (*models.Listing, error) {
	var l models.Listing
	err := r.db.Preload("Photos", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).First(&l, id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ListingRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	return r.db.Model(&models.Listing{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes the listing record and its photo rows. Adoption requests must
// already be gone by the time this runs (the workflow cascade guarantees it).
func (r *ListingRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", id).Delete(&models.ListingPhoto{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Listing{}, id).Error
	})
}

func (r *ListingRepository) AddPhoto(p *models.ListingPhoto) error {
	return r.db.Create(p).Error
}

func (r *ListingRepository) List(species string, limit, offset int) ([]models.Listing, error) {
	var list []models.Listing
	q := r.db.Preload("Photos").Order("created_at DESC").Limit(limit).Offset(offset)
	if species != "" {
		q = q.Where("species = ?", species)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *ListingRepository) ListByOwnerID(ownerID uint, limit, offset int) ([]models.Listing, error) {
	var list []models.Listing
	err := r.db.Where("owner_id = ?", ownerID).Preload("Photos").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
