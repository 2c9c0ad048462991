package store

import (
	"context"
	"errors"

	"arogya-app-server/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBackend persists each collection as one row of the collections table.
type GormBackend struct {
	DB *gorm.DB
}

// NewGormBackend creates a GormBackend over an initialized database
func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{DB: db}
}

func (g *GormBackend) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var row models.Collection
	err := g.DB.WithContext(ctx).Where(&models.Collection{Name: key}).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(row.Value), true, nil
}

func (g *GormBackend) Save(ctx context.Context, key string, value []byte) error {
	row := models.Collection{Name: key, Value: string(value)}
	return g.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

func (g *GormBackend) Remove(ctx context.Context, key string) error {
	return g.DB.WithContext(ctx).Where(&models.Collection{Name: key}).Delete(&models.Collection{}).Error
}
