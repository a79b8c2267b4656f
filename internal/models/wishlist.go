package models

import "time"

// Wishlist holds one user's items within one family. At most one exists per
// (user, family) pair. PublicSlug and PublishedAt are both nil until the list
// is published; both set while the public page is live.
type Wishlist struct {
	ID          uint       `gorm:"primaryKey"`
	UserID      uint       `gorm:"not null;uniqueIndex:idx_wishlist_user_family"`
	FamilyID    uint       `gorm:"not null;uniqueIndex:idx_wishlist_user_family;index"`
	PublicSlug  *string    `gorm:"uniqueIndex"`
	PublishedAt *time.Time
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time

	// Relationships
	User   User           `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Family Family         `gorm:"foreignKey:FamilyID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Items  []WishlistItem `gorm:"foreignKey:WishlistID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
