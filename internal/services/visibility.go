package services

import (
	"context"
	"fmt"
	"time"

	"github.com/giftnest-dev/giftnest/internal/apperr"
	"github.com/giftnest-dev/giftnest/internal/models"
	"gorm.io/gorm"
)

// VisibilityService gates browsing of other members' wishlists behind the
// caller's own contribution count. The threshold is policy, not invariant,
// and the count is re-evaluated on every gated call so deleting items can
// close the gate again.
type VisibilityService struct {
	db        *gorm.DB
	threshold int
}

// OtherWishlist is one row of the family browse listing.
type OtherWishlist struct {
	WishlistID uint      `json:"wishlist_id"`
	UserID     uint      `json:"user_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

// MemberItem is an item as seen by a fellow family member: reservation state
// and reserver identity included. This is the only read path that exposes
// the reserver.
type MemberItem struct {
	ID                uint      `json:"id"`
	Title             string    `json:"title"`
	URL               *string   `json:"url"`
	PriceCents        *int64    `json:"price_cents"`
	Notes             *string   `json:"notes"`
	Priority          int       `json:"priority"`
	CreatedAt         time.Time `json:"created_at"`
	Reserved          bool      `json:"reserved"`
	ReservationStatus *string   `json:"reservation_status"`
	ReserverUserID    *uint     `json:"reserver_user_id"`
	ReserverName      *string   `json:"reserver_name"`
}

// MemberView is another member's wishlist with owner display info.
type MemberView struct {
	WishlistID uint         `json:"wishlist_id"`
	OwnerID    uint         `json:"owner_id"`
	OwnerName  string       `json:"owner_name"`
	Items      []MemberItem `json:"items"`
}

// CanBrowseOthers reports whether the caller has enough items on their own
// wishlist to browse the rest of the family.
func (s *VisibilityService) CanBrowseOthers(ctx context.Context, userID, familyID uint) (bool, error) {
	var count int64

	err := s.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Joins("JOIN wishlists ON wishlists.id = wishlist_items.wishlist_id").
		Where("wishlists.user_id = ? AND wishlists.family_id = ?", userID, familyID).
		Count(&count).Error
	if err != nil {
		return false, apperr.Unexpected("failed to count items", err)
	}

	return count >= int64(s.threshold), nil
}

// Threshold exposes the configured minimum for messages and tests.
func (s *VisibilityService) Threshold() int { return s.threshold }

func (s *VisibilityService) requireBrowse(ctx context.Context, userID, familyID uint) error {
	ok, err := s.CanBrowseOthers(ctx, userID, familyID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden(fmt.Sprintf(
			"add at least %d items to your wishlist to browse your family", s.threshold))
	}
	return nil
}

// ListOtherWishlists returns one row per other family member who already has
// a wishlist, ordered by member name. Members without a wishlist are omitted.
func (s *VisibilityService) ListOtherWishlists(ctx context.Context, userID, familyID uint) ([]OtherWishlist, error) {
	if err := s.requireBrowse(ctx, userID, familyID); err != nil {
		return nil, err
	}

	var rows []OtherWishlist

	err := s.db.WithContext(ctx).
		Table("wishlists").
		Joins("JOIN users ON users.id = wishlists.user_id").
		Where("wishlists.family_id = ? AND wishlists.user_id <> ?", familyID, userID).
		Order("users.name ASC").
		Select("wishlists.id AS wishlist_id",
			"users.id AS user_id",
			"users.name AS name",
			"wishlists.created_at AS created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Unexpected("failed to list wishlists", err)
	}

	return rows, nil
}

// MemberWishlist returns targetUserID's wishlist in the caller's family,
// items joined with reservation state and reserver identity. When the caller
// asks for their own list the redacted owner query answers instead, so the
// spoiler boundary holds on this path too.
func (s *VisibilityService) MemberWishlist(ctx context.Context, callerID, familyID, targetUserID uint) (*MemberView, error) {
	if err := s.requireBrowse(ctx, callerID, familyID); err != nil {
		return nil, err
	}

	var wishlist models.Wishlist

	err := s.db.WithContext(ctx).
		Where("user_id = ? AND family_id = ?", targetUserID, familyID).
		First(&wishlist).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("wishlist not found")
		}
		return nil, apperr.Unexpected("failed to read wishlist", err)
	}

	var owner models.User
	if err := s.db.WithContext(ctx).First(&owner, targetUserID).Error; err != nil {
		return nil, apperr.Unexpected("failed to load member", err)
	}

	view := &MemberView{WishlistID: wishlist.ID, OwnerID: owner.ID, OwnerName: owner.Name}

	if callerID == targetUserID {
		var items []models.WishlistItem
		err = s.db.WithContext(ctx).
			Where("wishlist_id = ?", wishlist.ID).
			Order("created_at DESC").
			Find(&items).Error
		if err != nil {
			return nil, apperr.Unexpected("failed to list items", err)
		}
		view.Items = make([]MemberItem, 0, len(items))
		for _, item := range items {
			view.Items = append(view.Items, MemberItem{
				ID:         item.ID,
				Title:      item.Title,
				URL:        item.URL,
				PriceCents: item.PriceCents,
				Notes:      item.Notes,
				Priority:   item.Priority,
				CreatedAt:  item.CreatedAt,
			})
		}
		return view, nil
	}

	var items []MemberItem
	err = s.db.WithContext(ctx).
		Table("wishlist_items").
		Joins("LEFT JOIN reservations ON reservations.item_id = wishlist_items.id").
		Joins("LEFT JOIN users ON users.id = reservations.reserver_user_id").
		Where("wishlist_items.wishlist_id = ?", wishlist.ID).
		Order("wishlist_items.created_at DESC").
		Select("wishlist_items.id AS id",
			"wishlist_items.title AS title",
			"wishlist_items.url AS url",
			"wishlist_items.price_cents AS price_cents",
			"wishlist_items.notes AS notes",
			"wishlist_items.priority AS priority",
			"wishlist_items.created_at AS created_at",
			"CASE WHEN reservations.id IS NULL THEN false ELSE true END AS reserved",
			"reservations.status AS reservation_status",
			"users.id AS reserver_user_id",
			"users.name AS reserver_name").
		Scan(&items).Error
	if err != nil {
		return nil, apperr.Unexpected("failed to list items", err)
	}

	view.Items = items
	return view, nil
}
