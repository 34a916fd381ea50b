package progress

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/learnloop/learnloop-backend/internal/domain"
	"github.com/learnloop/learnloop-backend/internal/platform/logger"
)

// GormSnapshotStore persists the snapshot as one JSON row under the fixed
// storage key.
type GormSnapshotStore struct {
	db  *gorm.DB
	key string
	log *logger.Logger
}

func NewGormSnapshotStore(db *gorm.DB, baseLog *logger.Logger) *GormSnapshotStore {
	return &GormSnapshotStore{
		db:  db,
		key: domain.SnapshotStorageKey,
		log: baseLog.With("repo", "SnapshotStore"),
	}
}

func (s *GormSnapshotStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	var record domain.SnapshotRecord
	err := s.db.WithContext(ctx).Where("key = ?", s.key).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(record.Data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snapshot, nil
}

func (s *GormSnapshotStore) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	record := domain.SnapshotRecord{Key: s.key, Data: raw}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&record).Error; err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
