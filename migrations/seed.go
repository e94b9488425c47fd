package migrations

import (
	"fleetxp/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// demoShips gives a local instance something to show on the read API.
var demoShips = []models.ShipData{
	{MemberID: "demo-onslaught", XP: 4200},
	{MemberID: "demo-eagle", XP: 1250},
	{MemberID: "demo-wolf", XP: 180},
}

// Seed inserts the demo ships that are not present yet. Existing rows are left alone.
func Seed(db *gorm.DB) int64 {
	// silent mode
	previous := db.Logger
	db.Logger = logger.Default.LogMode(logger.Silent)
	defer func() { db.Logger = previous }()

	var created int64
	for _, ship := range demoShips {
		row := ship
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error == nil {
			created += res.RowsAffected
		}
	}
	return created
}
