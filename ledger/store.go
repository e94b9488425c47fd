package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fleetxp/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists the ledger and the engagement log through gorm.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Load reads every persisted ship data row into a fresh table.
func (s *Store) Load(ctx context.Context) (*Table, error) {
	var rows []models.ShipData
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load ship data: %w", err)
	}
	t := NewTable()
	for _, row := range rows {
		t.restore(row.MemberID, Entry{XP: row.XP, PermaModsOverLimit: row.PermaModsOverLimit})
	}
	return t, nil
}

// Save upserts every entry changed since the last save and returns how
// many rows were written. On failure the entries stay dirty.
func (s *Store) Save(ctx context.Context, t *Table) (int, error) {
	dirty := t.takeDirty()
	if len(dirty) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(dirty))
	for id := range dirty {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	now := time.Now().UTC()
	rows := make([]models.ShipData, 0, len(ids))
	for _, id := range ids {
		e := dirty[id]
		rows = append(rows, models.ShipData{
			MemberID:           id,
			XP:                 e.XP,
			PermaModsOverLimit: e.PermaModsOverLimit,
			UpdatedAt:          now,
		})
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "member_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"xp", "perma_mods_over_limit", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		t.markDirty(ids...)
		return 0, fmt.Errorf("save ship data: %w", err)
	}
	return len(rows), nil
}

func (s *Store) RecordEngagement(ctx context.Context, rec *models.EngagementRecord) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("record engagement %s: %w", rec.EngagementID, err)
	}
	return nil
}

// HasEngagement reports whether an engagement with this id was already recorded.
func (s *Store) HasEngagement(ctx context.Context, engagementID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.EngagementRecord{}).
		Where("engagement_id = ?", engagementID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("look up engagement %s: %w", engagementID, err)
	}
	return count > 0, nil
}

// RecentEngagements returns up to limit engagement records, newest first.
func (s *Store) RecentEngagements(ctx context.Context, limit int) ([]models.EngagementRecord, error) {
	var records []models.EngagementRecord
	err := s.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list engagements: %w", err)
	}
	return records, nil
}
