package database

import (
	"context"
	"fmt"

	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"gorm.io/gorm"
)

// Reset deletes every row but keeps the schema.
func Reset(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).Transaction(truncateAll)
	if err != nil {
		return err
	}
	utils.InfoLogger.Info("database reset complete")
	return nil
}

func truncateAll(tx *gorm.DB) error {
	for _, model := range []interface{}{&models.Reservation{}, &models.Table{}, &models.User{}} {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}
