package db

import (
	"github.com/giftnest-dev/giftnest/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	// TranslateError turns unique-constraint violations into
	// gorm.ErrDuplicatedKey, which the services rely on for the reservation
	// and invite-code races.
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.Family{},
		&models.FamilyMembership{},
		&models.Wishlist{},
		&models.WishlistItem{},
		&models.Reservation{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}
