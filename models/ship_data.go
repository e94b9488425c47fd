package models

import "time"

// ShipData is the persisted XP ledger row of one fleet member.
type ShipData struct {
	MemberID           string    `json:"member_id" gorm:"primaryKey;type:varchar(64)"`
	XP                 float64   `json:"xp" gorm:"not null;default:0"`
	PermaModsOverLimit int       `json:"perma_mods_over_limit" gorm:"not null;default:0"`
	UpdatedAt          time.Time `json:"updated_at"`
}
