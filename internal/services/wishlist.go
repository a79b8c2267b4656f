package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/giftnest-dev/giftnest/internal/apperr"
	"github.com/giftnest-dev/giftnest/internal/models"
	"github.com/giftnest-dev/giftnest/internal/tokens"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxNotesLen     = 1000
	maxPriceCents   = 9_999_999_999 // 99,999,999.99 in minor units
	minItemPriority = 1
	maxItemPriority = 5
)

// WishlistService owns the one-wishlist-per-(user,family) invariant and all
// item CRUD, plus the public publish/unpublish toggle.
type WishlistService struct {
	db  *gorm.DB
	log *logrus.Logger
}

// ItemFields carries create/update input. Nil means "not supplied"; on
// create, Title is mandatory.
type ItemFields struct {
	Title      *string `json:"title"`
	URL        *string `json:"url"`
	PriceCents *int64  `json:"price_cents"`
	Notes      *string `json:"notes"`
	Priority   *int    `json:"priority"`
}

// PublicView is the unauthenticated read of a published wishlist. It carries
// no reservation data at all.
type PublicView struct {
	OwnerName string                `json:"owner_name"`
	Wishlist  models.Wishlist       `json:"wishlist"`
	Items     []models.WishlistItem `json:"items"`
}

func validateItemFields(f ItemFields, create bool) error {
	if create {
		if f.Title == nil || strings.TrimSpace(*f.Title) == "" {
			return apperr.Validation("title is required")
		}
	} else if f.Title != nil && strings.TrimSpace(*f.Title) == "" {
		return apperr.Validation("title must not be empty")
	}

	if f.URL != nil && *f.URL != "" {
		parsed, err := url.Parse(*f.URL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return apperr.Validation("url must be a valid http(s) URL")
		}
	}

	if f.PriceCents != nil && (*f.PriceCents < 0 || *f.PriceCents > maxPriceCents) {
		return apperr.Validation("price is out of range")
	}

	if f.Notes != nil && len(*f.Notes) > maxNotesLen {
		return apperr.Validation("notes are too long")
	}

	if f.Priority != nil && (*f.Priority < minItemPriority || *f.Priority > maxItemPriority) {
		return apperr.Validation("priority must be between 1 and 5")
	}

	return nil
}

// EnsureWishlist is an idempotent get-or-create on the (user, family) pair.
// Insert-on-conflict-do-nothing followed by a read, in one transaction, so
// concurrent first calls converge on a single row.
func (s *WishlistService) EnsureWishlist(ctx context.Context, userID, familyID uint) (*models.Wishlist, error) {
	var wishlist *models.Wishlist

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		wishlist, txErr = ensureWishlistTx(tx, userID, familyID)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	return wishlist, nil
}

func ensureWishlistTx(tx *gorm.DB, userID, familyID uint) (*models.Wishlist, error) {
	insert := models.Wishlist{UserID: userID, FamilyID: familyID}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "family_id"}},
		DoNothing: true,
	}).Create(&insert).Error
	if err != nil && !isDuplicate(err) {
		return nil, apperr.Unexpected("failed to ensure wishlist", err)
	}

	var wishlist models.Wishlist
	err = tx.Where("user_id = ? AND family_id = ?", userID, familyID).First(&wishlist).Error
	if err != nil {
		return nil, apperr.Unexpected("failed to read wishlist", err)
	}

	return &wishlist, nil
}

// AddItem validates, then ensures the wishlist and inserts the item in one
// atomic transaction.
func (s *WishlistService) AddItem(ctx context.Context, userID, familyID uint, fields ItemFields) (*models.WishlistItem, error) {
	if err := validateItemFields(fields, true); err != nil {
		return nil, err
	}

	item := models.WishlistItem{
		Title:    strings.TrimSpace(*fields.Title),
		Priority: models.DefaultItemPriority,
	}
	applyItemFields(&item, fields)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wishlist, txErr := ensureWishlistTx(tx, userID, familyID)
		if txErr != nil {
			return txErr
		}

		item.WishlistID = wishlist.ID
		if txErr := tx.Create(&item).Error; txErr != nil {
			return apperr.Unexpected("failed to create item", txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"wishlist_id": item.WishlistID,
		"item_id":     item.ID,
	}).Info("wishlist item added")

	return &item, nil
}

func applyItemFields(item *models.WishlistItem, f ItemFields) {
	if f.Title != nil {
		item.Title = strings.TrimSpace(*f.Title)
	}
	if f.URL != nil {
		if *f.URL == "" {
			item.URL = nil
		} else {
			item.URL = f.URL
		}
	}
	if f.PriceCents != nil {
		item.PriceCents = f.PriceCents
	}
	if f.Notes != nil {
		item.Notes = f.Notes
	}
	if f.Priority != nil {
		item.Priority = *f.Priority
	}
}

// ownItem loads an item only when its wishlist belongs to (userID, familyID).
// Anything else is NotFound; the caller cannot distinguish other users' items
// from absent ones.
func (s *WishlistService) ownItem(ctx context.Context, userID, familyID, itemID uint) (*models.WishlistItem, error) {
	var item models.WishlistItem

	err := s.db.WithContext(ctx).
		Joins("JOIN wishlists ON wishlists.id = wishlist_items.wishlist_id").
		Where("wishlist_items.id = ? AND wishlists.user_id = ? AND wishlists.family_id = ?",
			itemID, userID, familyID).
		First(&item).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("item not found")
		}
		return nil, apperr.Unexpected("failed to load item", err)
	}

	return &item, nil
}

// UpdateItem applies the supplied fields to an owned item, re-validating
// them with the same rules as AddItem.
func (s *WishlistService) UpdateItem(ctx context.Context, userID, familyID, itemID uint, fields ItemFields) (*models.WishlistItem, error) {
	if err := validateItemFields(fields, false); err != nil {
		return nil, err
	}

	item, err := s.ownItem(ctx, userID, familyID, itemID)
	if err != nil {
		return nil, err
	}

	applyItemFields(item, fields)

	updates := map[string]interface{}{
		"title":       item.Title,
		"url":         item.URL,
		"price_cents": item.PriceCents,
		"notes":       item.Notes,
		"priority":    item.Priority,
	}
	if err := s.db.WithContext(ctx).Model(item).Updates(updates).Error; err != nil {
		return nil, apperr.Unexpected("failed to update item", err)
	}

	return item, nil
}

// DeleteItem removes an owned item and any reservation on it, in one
// transaction.
func (s *WishlistService) DeleteItem(ctx context.Context, userID, familyID, itemID uint) error {
	item, err := s.ownItem(ctx, userID, familyID, itemID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if txErr := tx.Where("item_id = ?", item.ID).Delete(&models.Reservation{}).Error; txErr != nil {
			return apperr.Unexpected("failed to delete reservation", txErr)
		}
		if txErr := tx.Delete(&models.WishlistItem{}, item.ID).Error; txErr != nil {
			return apperr.Unexpected("failed to delete item", txErr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithField("item_id", item.ID).Info("wishlist item deleted")
	return nil
}

// ListOwnItems returns the caller's wishlist and its items, newest first.
// This path never joins reservations: the owner must not observe reservation
// state, and that redaction is structural, not a filter.
func (s *WishlistService) ListOwnItems(ctx context.Context, userID, familyID uint) (*models.Wishlist, []models.WishlistItem, error) {
	var wishlist models.Wishlist

	err := s.db.WithContext(ctx).
		Where("user_id = ? AND family_id = ?", userID, familyID).
		First(&wishlist).Error
	if err != nil {
		if isNotFound(err) {
			return nil, []models.WishlistItem{}, nil
		}
		return nil, nil, apperr.Unexpected("failed to read wishlist", err)
	}

	var items []models.WishlistItem
	err = s.db.WithContext(ctx).
		Where("wishlist_id = ?", wishlist.ID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, nil, apperr.Unexpected("failed to list items", err)
	}

	return &wishlist, items, nil
}

// Publish ensures the wishlist, assigns a public slug when none exists, and
// stamps published_at. An existing slug is never rotated.
func (s *WishlistService) Publish(ctx context.Context, userID, familyID uint) (*models.Wishlist, error) {
	var wishlist *models.Wishlist

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		wishlist, txErr = ensureWishlistTx(tx, userID, familyID)
		if txErr != nil {
			return txErr
		}

		now := time.Now()

		if wishlist.PublicSlug != nil {
			if txErr := tx.Model(wishlist).Update("published_at", now).Error; txErr != nil {
				return apperr.Unexpected("failed to publish wishlist", txErr)
			}
			wishlist.PublishedAt = &now
			return nil
		}

		// Pick a free slug by reading, not by failing an insert: a failed
		// statement would abort the surrounding transaction. The unique
		// index still decides any remaining race on the final update.
		var slug string
		for attempt := 0; attempt < codeAttempts; attempt++ {
			candidate := tokens.PublicSlug()
			var count int64
			if txErr := tx.Model(&models.Wishlist{}).
				Where("public_slug = ?", candidate).
				Count(&count).Error; txErr != nil {
				return apperr.Unexpected("failed to check slug", txErr)
			}
			if count == 0 {
				slug = candidate
				break
			}
		}
		if slug == "" {
			return apperr.Unexpected("could not generate a unique share link", nil)
		}

		if txErr := tx.Model(wishlist).Updates(map[string]interface{}{
			"public_slug":  slug,
			"published_at": now,
		}).Error; txErr != nil {
			return apperr.Unexpected("failed to publish wishlist", txErr)
		}
		wishlist.PublicSlug = &slug
		wishlist.PublishedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"wishlist_id": wishlist.ID,
		"slug":        *wishlist.PublicSlug,
	}).Info("wishlist published")

	return wishlist, nil
}

// Unpublish clears the slug and timestamp. The old slug stops resolving
// immediately.
func (s *WishlistService) Unpublish(ctx context.Context, userID, familyID uint) (*models.Wishlist, error) {
	var wishlist models.Wishlist

	err := s.db.WithContext(ctx).
		Where("user_id = ? AND family_id = ?", userID, familyID).
		First(&wishlist).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("wishlist not found")
		}
		return nil, apperr.Unexpected("failed to read wishlist", err)
	}

	err = s.db.WithContext(ctx).Model(&wishlist).Updates(map[string]interface{}{
		"public_slug":  nil,
		"published_at": nil,
	}).Error
	if err != nil {
		return nil, apperr.Unexpected("failed to unpublish wishlist", err)
	}

	wishlist.PublicSlug = nil
	wishlist.PublishedAt = nil

	s.log.WithField("wishlist_id", wishlist.ID).Info("wishlist unpublished")
	return &wishlist, nil
}

// PublicWishlist resolves a slug for the unauthenticated public page. Both
// the slug and a non-nil published_at are required; a stale slug after
// unpublish does not resolve. Public viewers never see reservation state.
func (s *WishlistService) PublicWishlist(ctx context.Context, slug string) (*PublicView, error) {
	var wishlist models.Wishlist

	err := s.db.WithContext(ctx).
		Where("public_slug = ? AND published_at IS NOT NULL", slug).
		First(&wishlist).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("wishlist not published")
		}
		return nil, apperr.Unexpected("failed to resolve slug", err)
	}

	var owner models.User
	if err := s.db.WithContext(ctx).First(&owner, wishlist.UserID).Error; err != nil {
		return nil, apperr.Unexpected("failed to load owner", err)
	}

	var items []models.WishlistItem
	err = s.db.WithContext(ctx).
		Where("wishlist_id = ?", wishlist.ID).
		Order("priority ASC").
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, apperr.Unexpected("failed to list items", err)
	}

	return &PublicView{OwnerName: owner.Name, Wishlist: wishlist, Items: items}, nil
}
