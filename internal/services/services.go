// Package services implements the core of the application: family membership,
// wishlist management, the visibility gate, and the reservation engine. All
// cross-request mutual exclusion is delegated to the database's uniqueness
// constraints; each logical operation runs in at most one transaction.
package services

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// codeAttempts bounds the generate-and-retry loops for invite codes and
// public slugs. A liveness safeguard; correctness lives in the constraints.
const codeAttempts = 5

// Services bundles the four core engines over one database handle.
type Services struct {
	Family      *FamilyService
	Wishlist    *WishlistService
	Visibility  *VisibilityService
	Reservation *ReservationService
}

func New(db *gorm.DB, log *logrus.Logger, visibilityThreshold int) *Services {
	return &Services{
		Family:      &FamilyService{db: db, log: log},
		Wishlist:    &WishlistService{db: db, log: log},
		Visibility:  &VisibilityService{db: db, threshold: visibilityThreshold},
		Reservation: &ReservationService{db: db, log: log},
	}
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
