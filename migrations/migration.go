package migrations

import (
	"fleetxp/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// create tables
	return db.AutoMigrate(
		&models.ShipData{},
		&models.EngagementRecord{},
	)
}
