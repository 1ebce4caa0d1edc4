package state

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"qualisync/internal/errs"
	"qualisync/internal/infrastructure/persistence/sqlite/model"
	"qualisync/internal/ports"
)

// SQLiteSyncState stores per-target sync bookkeeping in the same sqlite
// database as the catalogs.
type SQLiteSyncState struct {
	db *gorm.DB
}

var _ ports.SyncState = (*SQLiteSyncState)(nil)

func NewSQLiteSyncState(db *gorm.DB) *SQLiteSyncState {
	return &SQLiteSyncState{db: db}
}

func (s *SQLiteSyncState) Get(ctx context.Context, key string) (string, bool, error) {
	if ctx == nil {
		return "", false, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return "", false, errs.Wrap(err, "check context")
	}

	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return "", false, errors.New("key is required")
	}

	var row model.SyncStateKV
	if err := s.db.WithContext(ctx).Where("key = ?", trimmedKey).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, errs.Wrap(err, "query sync state by key")
	}

	return row.Value, true, nil
}

func (s *SQLiteSyncState) Set(ctx context.Context, key string, value string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return errors.New("key is required")
	}

	row := model.SyncStateKV{
		Key:       trimmedKey,
		Value:     value,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"value":      row.Value,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert sync state key")
	}

	return nil
}

func (s *SQLiteSyncState) Delete(ctx context.Context, key string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return errors.New("key is required")
	}

	if err := s.db.WithContext(ctx).Where("key = ?", trimmedKey).Delete(&model.SyncStateKV{}).Error; err != nil {
		return errs.Wrap(err, "delete sync state key")
	}
	return nil
}
