package services

import (
	"context"
	"testing"

	"github.com/giftnest-dev/giftnest/internal/apperr"
	"github.com/giftnest-dev/giftnest/internal/models"
)

func TestReserve(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	family, users := setupFamily(t, svc, db, "alice", "bob", "carol")
	alice, bob, carol := users[0], users[1], users[2]

	item := addItems(t, svc, alice.ID, family.ID, "Socks")[0]

	reservation, err := svc.Reservation.Reserve(ctx, bob.ID, family.ID, item.ID)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if reservation.Status != models.ReservationStatusReserved {
		t.Errorf("status = %q, want %q", reservation.Status, models.ReservationStatusReserved)
	}
	if reservation.ReserverUserID != bob.ID {
		t.Errorf("reserver = %d, want %d", reservation.ReserverUserID, bob.ID)
	}

	// The unique index on item_id decides the race: the second claim loses.
	_, err = svc.Reservation.Reserve(ctx, carol.ID, family.ID, item.ID)
	wantKind(t, err, apperr.KindConflict)
}

func TestReserveOwnItem(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	family, users := setupFamily(t, svc, db, "alice")
	alice := users[0]

	item := addItems(t, svc, alice.ID, family.ID, "Socks")[0]

	_, err := svc.Reservation.Reserve(ctx, alice.ID, family.ID, item.ID)
	wantKind(t, err, apperr.KindValidation)
}

func TestReserveOutsideFamily(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	family, users := setupFamily(t, svc, db, "alice")
	item := addItems(t, svc, users[0].ID, family.ID, "Socks")[0]

	otherFamily, otherUsers := setupFamily(t, svc, db, "dave")

	_, err := svc.Reservation.Reserve(ctx, otherUsers[0].ID, otherFamily.ID, item.ID)
	wantKind(t, err, apperr.KindNotFound)

	_, err = svc.Reservation.Reserve(ctx, users[0].ID, family.ID, 99999)
	wantKind(t, err, apperr.KindNotFound)
}

func TestUnreserve(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	family, users := setupFamily(t, svc, db, "alice", "bob", "carol")
	alice, bob, carol := users[0], users[1], users[2]

	item := addItems(t, svc, alice.ID, family.ID, "Socks")[0]

	if _, err := svc.Reservation.Reserve(ctx, bob.ID, family.ID, item.ID); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	// Only the reserver can release the claim.
	err := svc.Reservation.Unreserve(ctx, carol.ID, item.ID)
	wantKind(t, err, apperr.KindNotFound)

	if err := svc.Reservation.Unreserve(ctx, bob.ID, item.ID); err != nil {
		t.Fatalf("Unreserve: %v", err)
	}

	err = svc.Reservation.Unreserve(ctx, bob.ID, item.ID)
	wantKind(t, err, apperr.KindNotFound)

	// The released item is immediately claimable again.
	if _, err := svc.Reservation.Reserve(ctx, carol.ID, family.ID, item.ID); err != nil {
		t.Fatalf("re-reserve after release: %v", err)
	}
}

func TestPurchase(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	family, users := setupFamily(t, svc, db, "alice", "bob", "carol")
	alice, bob, carol := users[0], users[1], users[2]

	item := addItems(t, svc, alice.ID, family.ID, "Socks")[0]

	if _, err := svc.Reservation.Reserve(ctx, bob.ID, family.ID, item.ID); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	_, err := svc.Reservation.Purchase(ctx, carol.ID, item.ID)
	wantKind(t, err, apperr.KindNotFound)

	purchased, err := svc.Reservation.Purchase(ctx, bob.ID, item.ID)
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if purchased.Status != models.ReservationStatusPurchased {
		t.Errorf("status = %q, want %q", purchased.Status, models.ReservationStatusPurchased)
	}

	// Purchased is terminal: no second purchase, no unreserve.
	_, err = svc.Reservation.Purchase(ctx, bob.ID, item.ID)
	wantKind(t, err, apperr.KindNotFound)

	err = svc.Reservation.Unreserve(ctx, bob.ID, item.ID)
	wantKind(t, err, apperr.KindNotFound)

	// And the item stays claimed.
	_, err = svc.Reservation.Reserve(ctx, carol.ID, family.ID, item.ID)
	wantKind(t, err, apperr.KindConflict)
}

func TestItemOwner(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	family, users := setupFamily(t, svc, db, "alice")
	alice := users[0]

	item := addItems(t, svc, alice.ID, family.ID, "Socks")[0]

	ownerID, err := svc.Reservation.ItemOwner(ctx, family.ID, item.ID)
	if err != nil {
		t.Fatalf("ItemOwner: %v", err)
	}
	if ownerID != alice.ID {
		t.Errorf("owner = %d, want %d", ownerID, alice.ID)
	}

	_, err = svc.Reservation.ItemOwner(ctx, family.ID, 99999)
	wantKind(t, err, apperr.KindNotFound)
}
