package models

import "time"

const DefaultItemPriority = 3

// WishlistItem is a single wish. Price is stored in cents to keep money out
// of floating point. Priority runs 1 (highest) to 5 (lowest).
type WishlistItem struct {
	ID         uint    `gorm:"primaryKey"`
	WishlistID uint    `gorm:"not null;index"`
	Title      string  `gorm:"not null"`
	URL        *string `gorm:"type:text"`
	PriceCents *int64
	Notes      *string   `gorm:"type:text"`
	Priority   int       `gorm:"not null;default:3"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time

	// Relationships
	Wishlist    Wishlist     `gorm:"foreignKey:WishlistID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Reservation *Reservation `gorm:"foreignKey:ItemID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
