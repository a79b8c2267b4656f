package models

import "time"

const (
	ReservationStatusReserved  = "reserved"
	ReservationStatusPurchased = "purchased"
)

// Reservation is a non-owner member's claim on an item. The unique index on
// ItemID is the at-most-one-reservation invariant; concurrent reserve attempts
// race on it and the loser surfaces as a conflict. Status only ever moves
// reserved -> purchased.
type Reservation struct {
	ID             uint      `gorm:"primaryKey"`
	ItemID         uint      `gorm:"not null;uniqueIndex:idx_reservation_item"`
	ReserverUserID uint      `gorm:"not null;index"`
	Status         string    `gorm:"not null;default:reserved"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time

	// Relationships
	Item     WishlistItem `gorm:"foreignKey:ItemID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Reserver User         `gorm:"foreignKey:ReserverUserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
