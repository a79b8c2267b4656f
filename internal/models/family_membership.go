package models

import "time"

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// FamilyMembership links a user to their single family. The unique index on
// UserID alone is what enforces the one-family-per-user invariant; creating or
// joining another family upserts over it.
type FamilyMembership struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_membership_user"`
	FamilyID  uint      `gorm:"not null;index"`
	Role      string    `gorm:"not null;default:member"`
	CreatedAt time.Time `gorm:"not null"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Family Family `gorm:"foreignKey:FamilyID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
