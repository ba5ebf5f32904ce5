package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BaSui01/contentpipe/state"
)

// checkpointRecord is the relational shape of a snapshot. The state itself
// is stored as a JSON document; only the lookup and bookkeeping columns are
// first-class.
type checkpointRecord struct {
	ThreadID   string    `gorm:"column:thread_id;primaryKey"`
	WorkflowID string    `gorm:"column:workflow_id;index"`
	StepCount  int       `gorm:"column:step_count"`
	StateJSON  []byte    `gorm:"column:state_json"`
	SavedAt    time.Time `gorm:"column:saved_at"`
}

func (checkpointRecord) TableName() string {
	return "workflow_checkpoints"
}

// GormCheckpointStore persists snapshots through GORM, suitable for SQLite,
// MySQL, or Postgres backends.
type GormCheckpointStore struct {
	db *gorm.DB
}

// NewGormCheckpointStore creates the store and migrates its table.
func NewGormCheckpointStore(db *gorm.DB) (*GormCheckpointStore, error) {
	if err := db.AutoMigrate(&checkpointRecord{}); err != nil {
		return nil, fmt.Errorf("migrate checkpoint table: %w", err)
	}
	return &GormCheckpointStore{db: db}, nil
}

func (s *GormCheckpointStore) Save(ctx context.Context, threadID string, st *state.WorkflowState) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	rec := checkpointRecord{
		ThreadID:   threadID,
		WorkflowID: st.WorkflowID,
		StepCount:  st.StepCount,
		StateJSON:  payload,
		SavedAt:    time.Now().UTC(),
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "thread_id"}},
			UpdateAll: true,
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save checkpoint %s: %w", threadID, err)
	}
	return nil
}

func (s *GormCheckpointStore) Load(ctx context.Context, threadID string) (*state.WorkflowState, error) {
	var rec checkpointRecord
	err := s.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCheckpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %s: %w", threadID, err)
	}
	var st state.WorkflowState
	if err := json.Unmarshal(rec.StateJSON, &st); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", threadID, err)
	}
	return &st, nil
}

func (s *GormCheckpointStore) Delete(ctx context.Context, threadID string) error {
	err := s.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Delete(&checkpointRecord{}).Error
	if err != nil {
		return fmt.Errorf("delete checkpoint %s: %w", threadID, err)
	}
	return nil
}
