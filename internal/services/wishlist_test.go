package services

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/giftnest-dev/giftnest/internal/apperr"
	"github.com/giftnest-dev/giftnest/internal/models"
)

func strPtr(s string) *string { return &s }
func i64Ptr(n int64) *int64   { return &n }
func intPtr(n int) *int       { return &n }

func TestEnsureWishlistIdempotent(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	family, users := setupFamily(t, svc, db, "alice")

	first, err := svc.Wishlist.EnsureWishlist(ctx, users[0].ID, family.ID)
	if err != nil {
		t.Fatalf("EnsureWishlist: %v", err)
	}
	second, err := svc.Wishlist.EnsureWishlist(ctx, users[0].ID, family.ID)
	if err != nil {
		t.Fatalf("second EnsureWishlist: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("got two wishlists (%d, %d) for the same user and family", first.ID, second.ID)
	}
}

func TestAddItem(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	family, users := setupFamily(t, svc, db, "alice")

	item, err := svc.Wishlist.AddItem(ctx, users[0].ID, family.ID, ItemFields{
		Title:      strPtr("  Wool socks  "),
		URL:        strPtr("https://shop.example.com/socks"),
		PriceCents: i64Ptr(1299),
		Notes:      strPtr("size 42"),
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if item.Title != "Wool socks" {
		t.Errorf("title = %q, want trimmed", item.Title)
	}
	if item.Priority != models.DefaultItemPriority {
		t.Errorf("priority = %d, want default %d", item.Priority, models.DefaultItemPriority)
	}
	if item.WishlistID == 0 {
		t.Error("item not attached to a wishlist")
	}

	// AddItem creates the wishlist on first use.
	var wishlist models.Wishlist
	if err := db.First(&wishlist, item.WishlistID).Error; err != nil {
		t.Fatalf("wishlist not created: %v", err)
	}
	if wishlist.UserID != users[0].ID || wishlist.FamilyID != family.ID {
		t.Errorf("wishlist owner = (%d, %d), want (%d, %d)",
			wishlist.UserID, wishlist.FamilyID, users[0].ID, family.ID)
	}
}

func TestItemValidation(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	family, users := setupFamily(t, svc, db, "alice")

	tests := []struct {
		name   string
		fields ItemFields
	}{
		{"missing title", ItemFields{}},
		{"blank title", ItemFields{Title: strPtr("   ")}},
		{"relative url", ItemFields{Title: strPtr("x"), URL: strPtr("/socks")}},
		{"ftp url", ItemFields{Title: strPtr("x"), URL: strPtr("ftp://example.com/socks")}},
		{"negative price", ItemFields{Title: strPtr("x"), PriceCents: i64Ptr(-1)}},
		{"price too large", ItemFields{Title: strPtr("x"), PriceCents: i64Ptr(maxPriceCents + 1)}},
		{"notes too long", ItemFields{Title: strPtr("x"), Notes: strPtr(strings.Repeat("n", maxNotesLen+1))}},
		{"priority too low", ItemFields{Title: strPtr("x"), Priority: intPtr(0)}},
		{"priority too high", ItemFields{Title: strPtr("x"), Priority: intPtr(6)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Wishlist.AddItem(ctx, users[0].ID, family.ID, tt.fields)
			wantKind(t, err, apperr.KindValidation)
		})
	}
}

func TestUpdateItem(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	family, users := setupFamily(t, svc, db, "alice", "bob")
	alice, bob := users[0], users[1]

	item, err := svc.Wishlist.AddItem(ctx, alice.ID, family.ID, ItemFields{
		Title: strPtr("Socks"),
		URL:   strPtr("https://example.com/socks"),
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	updated, err := svc.Wishlist.UpdateItem(ctx, alice.ID, family.ID, item.ID, ItemFields{
		Priority: intPtr(1),
		URL:      strPtr(""),
	})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.Title != "Socks" {
		t.Errorf("title changed to %q on partial update", updated.Title)
	}
	if updated.Priority != 1 {
		t.Errorf("priority = %d, want 1", updated.Priority)
	}
	if updated.URL != nil {
		t.Errorf("empty url should clear the field, got %q", *updated.URL)
	}

	_, err = svc.Wishlist.UpdateItem(ctx, alice.ID, family.ID, item.ID, ItemFields{Title: strPtr(" ")})
	wantKind(t, err, apperr.KindValidation)

	// Other members cannot touch the item, and cannot learn it exists.
	_, err = svc.Wishlist.UpdateItem(ctx, bob.ID, family.ID, item.ID, ItemFields{Priority: intPtr(2)})
	wantKind(t, err, apperr.KindNotFound)
}

func TestDeleteItem(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	family, users := setupFamily(t, svc, db, "alice", "bob")
	alice, bob := users[0], users[1]

	item := addItems(t, svc, alice.ID, family.ID, "Socks")[0]

	if _, err := svc.Reservation.Reserve(ctx, bob.ID, family.ID, item.ID); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	err := svc.Wishlist.DeleteItem(ctx, bob.ID, family.ID, item.ID)
	wantKind(t, err, apperr.KindNotFound)

	if err := svc.Wishlist.DeleteItem(ctx, alice.ID, family.ID, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	var count int64
	db.Model(&models.WishlistItem{}).Where("id = ?", item.ID).Count(&count)
	if count != 0 {
		t.Error("item still present after delete")
	}
	db.Model(&models.Reservation{}).Where("item_id = ?", item.ID).Count(&count)
	if count != 0 {
		t.Error("reservation survived item delete")
	}

	err = svc.Wishlist.DeleteItem(ctx, alice.ID, family.ID, item.ID)
	wantKind(t, err, apperr.KindNotFound)
}

func TestListOwnItems(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	family, users := setupFamily(t, svc, db, "alice", "bob")
	alice, bob := users[0], users[1]

	wishlist, items, err := svc.Wishlist.ListOwnItems(ctx, alice.ID, family.ID)
	if err != nil {
		t.Fatalf("ListOwnItems: %v", err)
	}
	if wishlist != nil || len(items) != 0 {
		t.Errorf("expected empty result before first item, got %v, %v", wishlist, items)
	}

	created := addItems(t, svc, alice.ID, family.ID, "Socks", "Book")

	// The owner's reservation state must stay invisible to them even when a
	// fellow member has already claimed an item.
	if _, err := svc.Reservation.Reserve(ctx, bob.ID, family.ID, created[0].ID); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	wishlist, items, err = svc.Wishlist.ListOwnItems(ctx, alice.ID, family.ID)
	if err != nil {
		t.Fatalf("ListOwnItems: %v", err)
	}
	if wishlist == nil {
		t.Fatal("expected a wishlist")
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}

	titles := map[string]bool{}
	for _, item := range items {
		titles[item.Title] = true
	}
	if !titles["Socks"] || !titles["Book"] {
		t.Errorf("unexpected titles %v", titles)
	}
}

func TestPublishAndUnpublish(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	family, users := setupFamily(t, svc, db, "alice")
	alice := users[0]

	slugFormat := regexp.MustCompile(`^santa-[0-9a-f]{12}$`)

	published, err := svc.Wishlist.Publish(ctx, alice.ID, family.ID)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if published.PublicSlug == nil || !slugFormat.MatchString(*published.PublicSlug) {
		t.Fatalf("slug = %v, want santa-<12 hex>", published.PublicSlug)
	}
	if published.PublishedAt == nil {
		t.Fatal("published_at not set")
	}
	slug := *published.PublicSlug

	// Re-publishing keeps the same share link.
	again, err := svc.Wishlist.Publish(ctx, alice.ID, family.ID)
	if err != nil {
		t.Fatalf("second Publish: %v", err)
	}
	if again.PublicSlug == nil || *again.PublicSlug != slug {
		t.Errorf("slug rotated on re-publish: %v", again.PublicSlug)
	}

	unpublished, err := svc.Wishlist.Unpublish(ctx, alice.ID, family.ID)
	if err != nil {
		t.Fatalf("Unpublish: %v", err)
	}
	if unpublished.PublicSlug != nil || unpublished.PublishedAt != nil {
		t.Error("unpublish did not clear slug and timestamp")
	}

	var stored models.Wishlist
	if err := db.First(&stored, unpublished.ID).Error; err != nil {
		t.Fatalf("reload wishlist: %v", err)
	}
	if stored.PublicSlug != nil {
		t.Error("slug still stored after unpublish")
	}
}

func TestUnpublishWithoutWishlist(t *testing.T) {
	svc, db := newTestServices(t)
	family, users := setupFamily(t, svc, db, "alice")

	_, err := svc.Wishlist.Unpublish(context.Background(), users[0].ID, family.ID)
	wantKind(t, err, apperr.KindNotFound)
}

func TestPublicWishlist(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	family, users := setupFamily(t, svc, db, "alice", "bob")
	alice, bob := users[0], users[1]

	high, err := svc.Wishlist.AddItem(ctx, alice.ID, family.ID, ItemFields{
		Title: strPtr("Bike"), Priority: intPtr(1),
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := svc.Wishlist.AddItem(ctx, alice.ID, family.ID, ItemFields{
		Title: strPtr("Socks"), Priority: intPtr(5),
	}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	// Anonymous readers never learn who reserved what.
	if _, err := svc.Reservation.Reserve(ctx, bob.ID, family.ID, high.ID); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	published, err := svc.Wishlist.Publish(ctx, alice.ID, family.ID)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	view, err := svc.Wishlist.PublicWishlist(ctx, *published.PublicSlug)
	if err != nil {
		t.Fatalf("PublicWishlist: %v", err)
	}
	if view.OwnerName != "alice" {
		t.Errorf("owner = %q, want alice", view.OwnerName)
	}
	if len(view.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(view.Items))
	}
	if view.Items[0].Title != "Bike" {
		t.Errorf("first item = %q, want highest priority first", view.Items[0].Title)
	}

	if _, err := svc.Wishlist.Unpublish(ctx, alice.ID, family.ID); err != nil {
		t.Fatalf("Unpublish: %v", err)
	}
	_, err = svc.Wishlist.PublicWishlist(ctx, *published.PublicSlug)
	wantKind(t, err, apperr.KindNotFound)
}
