package services

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/giftnest-dev/giftnest/internal/apperr"
	"github.com/giftnest-dev/giftnest/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testThreshold = 3

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	// A single connection keeps every session on the same in-memory
	// database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Family{},
		&models.FamilyMembership{},
		&models.Wishlist{},
		&models.WishlistItem{},
		&models.Reservation{},
	)
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	return db
}

func newTestServices(t *testing.T) (*Services, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)

	log := logrus.New()
	log.SetOutput(io.Discard)

	return New(db, log, testThreshold), db
}

func createUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "x",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}

	return user
}

// setupFamily creates a family with the given members, the first as creator.
func setupFamily(t *testing.T, svc *Services, db *gorm.DB, memberNames ...string) (models.Family, []models.User) {
	t.Helper()

	ctx := context.Background()

	users := make([]models.User, 0, len(memberNames))
	for _, name := range memberNames {
		users = append(users, createUser(t, db, name))
	}

	family, err := svc.Family.CreateFamily(ctx, users[0].ID, "Smith")
	if err != nil {
		t.Fatalf("create family: %v", err)
	}

	for _, user := range users[1:] {
		if _, err := svc.Family.JoinFamily(ctx, user.ID, family.InviteCode); err != nil {
			t.Fatalf("join family: %v", err)
		}
	}

	return *family, users
}

func addItems(t *testing.T, svc *Services, userID, familyID uint, titles ...string) []models.WishlistItem {
	t.Helper()

	items := make([]models.WishlistItem, 0, len(titles))
	for _, title := range titles {
		title := title
		item, err := svc.Wishlist.AddItem(context.Background(), userID, familyID, ItemFields{Title: &title})
		if err != nil {
			t.Fatalf("add item %q: %v", title, err)
		}
		items = append(items, *item)
	}

	return items
}

func wantKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error of kind %v, got nil", kind)
	}
	if got := apperr.KindOf(err); got != kind {
		t.Fatalf("expected error kind %v, got %v (%v)", kind, got, err)
	}
}
