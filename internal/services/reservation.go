package services

import (
	"context"

	"github.com/giftnest-dev/giftnest/internal/apperr"
	"github.com/giftnest-dev/giftnest/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ReservationService drives the per-item state machine:
// unreserved -> reserved -> purchased. Purchased is terminal. Concurrent
// reserve attempts are decided by the unique index on item_id, never by a
// prior existence check.
type ReservationService struct {
	db  *gorm.DB
	log *logrus.Logger
}

// Reserve claims an item for the caller. The item must be in the caller's
// family but not on the caller's own wishlist.
func (s *ReservationService) Reserve(ctx context.Context, callerID, familyID, itemID uint) (*models.Reservation, error) {
	var row struct {
		ItemID  uint
		OwnerID uint
	}

	err := s.db.WithContext(ctx).
		Table("wishlist_items").
		Joins("JOIN wishlists ON wishlists.id = wishlist_items.wishlist_id").
		Where("wishlist_items.id = ? AND wishlists.family_id = ?", itemID, familyID).
		Select("wishlist_items.id AS item_id", "wishlists.user_id AS owner_id").
		Take(&row).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("item not found")
		}
		return nil, apperr.Unexpected("failed to load item", err)
	}

	// The spoiler boundary: owners never interact with reservations on
	// their own items, starting here.
	if row.OwnerID == callerID {
		return nil, apperr.Validation("cannot reserve your own item")
	}

	reservation := models.Reservation{
		ItemID:         itemID,
		ReserverUserID: callerID,
		Status:         models.ReservationStatusReserved,
	}

	if err := s.db.WithContext(ctx).Create(&reservation).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperr.Conflict("item is already reserved")
		}
		return nil, apperr.Unexpected("failed to create reservation", err)
	}

	s.log.WithFields(logrus.Fields{
		"item_id":        itemID,
		"reservation_id": reservation.ID,
	}).Info("item reserved")

	return &reservation, nil
}

// Unreserve cancels the caller's own reservation while it is still in the
// reserved state. Reserver identity alone is the authorization key; there is
// nothing to cancel once the item is purchased.
func (s *ReservationService) Unreserve(ctx context.Context, callerID, itemID uint) error {
	result := s.db.WithContext(ctx).
		Where("item_id = ? AND reserver_user_id = ? AND status = ?",
			itemID, callerID, models.ReservationStatusReserved).
		Delete(&models.Reservation{})
	if result.Error != nil {
		return apperr.Unexpected("failed to delete reservation", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("not reserved by you")
	}

	s.log.WithField("item_id", itemID).Info("item unreserved")
	return nil
}

// Purchase moves the caller's reservation to purchased. The lookup filters
// on status, so a second purchase finds nothing and fails NotFound instead
// of silently succeeding.
func (s *ReservationService) Purchase(ctx context.Context, callerID, itemID uint) (*models.Reservation, error) {
	var reservation models.Reservation

	err := s.db.WithContext(ctx).
		Where("item_id = ? AND reserver_user_id = ? AND status = ?",
			itemID, callerID, models.ReservationStatusReserved).
		First(&reservation).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("not reserved by you")
		}
		return nil, apperr.Unexpected("failed to load reservation", err)
	}

	err = s.db.WithContext(ctx).
		Model(&reservation).
		Update("status", models.ReservationStatusPurchased).Error
	if err != nil {
		return nil, apperr.Unexpected("failed to update reservation", err)
	}

	reservation.Status = models.ReservationStatusPurchased

	s.log.WithFields(logrus.Fields{
		"item_id":        itemID,
		"reservation_id": reservation.ID,
	}).Info("item purchased")

	return &reservation, nil
}

// ItemOwner returns the owning user of an item within a family. Handlers use
// it to route activity events away from the owner.
func (s *ReservationService) ItemOwner(ctx context.Context, familyID, itemID uint) (uint, error) {
	var row struct {
		OwnerID uint
	}

	err := s.db.WithContext(ctx).
		Table("wishlist_items").
		Joins("JOIN wishlists ON wishlists.id = wishlist_items.wishlist_id").
		Where("wishlist_items.id = ? AND wishlists.family_id = ?", itemID, familyID).
		Select("wishlists.user_id AS owner_id").
		Take(&row).Error
	if err != nil {
		if isNotFound(err) {
			return 0, apperr.NotFound("item not found")
		}
		return 0, apperr.Unexpected("failed to load item", err)
	}

	return row.OwnerID, nil
}
