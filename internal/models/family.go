package models

import "time"

type Family struct {
	ID         uint      `gorm:"primaryKey"`
	Name       string    `gorm:"not null"`
	InviteCode string    `gorm:"uniqueIndex;not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time

	// Relationships
	Memberships []FamilyMembership `gorm:"foreignKey:FamilyID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Wishlists   []Wishlist         `gorm:"foreignKey:FamilyID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
