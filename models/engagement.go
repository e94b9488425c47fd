package models

// EngagementRecord is the audit row written after each attributed engagement.
type EngagementRecord struct {
	Model
	EngagementID string  `json:"engagement_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	Commander    string  `json:"commander" gorm:"type:varchar(255)"`
	Contributors int     `json:"contributors" gorm:"not null;default:0"`
	Civilians    int     `json:"civilians" gorm:"not null;default:0"`
	CombatXP     float64 `json:"combat_xp" gorm:"not null;default:0"`
	NonCombatXP  float64 `json:"non_combat_xp" gorm:"not null;default:0"`
}
