package domain

import (
	"time"

	"gorm.io/datatypes"
)

// SnapshotStorageKey is the fixed key the single progress document is
// stored under.
const SnapshotStorageKey = "course-progress"

// SnapshotRecord is the persisted form of a progress Snapshot: one row per
// storage key holding the whole JSON document.
type SnapshotRecord struct {
	Key       string         `gorm:"primaryKey" json:"key"`
	Data      datatypes.JSON `gorm:"type:json;not null" json:"data"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (SnapshotRecord) TableName() string { return "progress_snapshots" }
