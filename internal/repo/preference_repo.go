package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/tkd-inscripciones/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// GetPreference returns the preference stored under key, or ErrNotFound.
func GetPreference(ctx context.Context, db *gorm.DB, key string) (*domain.Preference, error) {
	var p domain.Preference
	err := db.WithContext(ctx).Where("key = ?", key).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SetPreference upserts value under key.
func SetPreference(ctx context.Context, db *gorm.DB, key, value string) (*domain.Preference, error) {
	p := &domain.Preference{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(p).Error
	if err != nil {
		return nil, err
	}
	return p, nil
}
