package models

import (
	"time"

	"gorm.io/gorm"
)

type Listing struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	OwnerID      uint           `gorm:"not null;index" json:"owner_id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Species      string         `gorm:"size:50;index" json:"species"`
	Breed        string         `gorm:"size:100" json:"breed"`
	Description  string         `gorm:"type:text" json:"description"`
	Status       string         `gorm:"size:20;not null;index" json:"status"` // available, pending, approved, rejected, adopted
	MainImageURL string         `gorm:"size:512" json:"main_image_url"`
	HealthInfo   string         `gorm:"type:text" json:"health_info"` // free text; may embed a vaccination-proof URL
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Owner  User           `gorm:"foreignKey:OwnerID" json:"-"`
	Photos []ListingPhoto `gorm:"foreignKey:ListingID" json:"photos,omitempty"`
}

func (Listing) TableName() string {
	return "listings"
}

// PhotoURLs returns the additional-photo URLs in sort order, skipping empties.
func (l *Listing) PhotoURLs() []string {
	urls := make([]string, 0, len(l.Photos))
	for _, p := range l.Photos {
		if p.URL != "" {
			urls = append(urls, p.URL)
		}
	}
	return urls
}

type ListingPhoto struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ListingID uint           `gorm:"not null;index" json:"listing_id"`
	URL       string         `gorm:"size:512;not null" json:"url"`
	SortOrder int            `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Listing Listing `gorm:"foreignKey:ListingID" json:"-"`
}

func (ListingPhoto) TableName() string {
	return "listing_photos"
}
