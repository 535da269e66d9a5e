package database

import (
	"context"
	"fmt"

	"github.com/yeremiapane/restaurant-reservation/models"
	"gorm.io/gorm"
)

type TableReport struct {
	Name   string `json:"name"`
	Exists bool   `json:"exists"`
	Rows   int64  `json:"rows"`
}

type CheckReport struct {
	Driver string        `json:"driver"`
	Tables []TableReport `json:"tables"`
}

// Check pings the database and reports the row count of each model table.
func Check(ctx context.Context, db *gorm.DB) (CheckReport, error) {
	report := CheckReport{Driver: db.Dialector.Name()}

	sqlDB, err := db.DB()
	if err != nil {
		return report, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return report, fmt.Errorf("ping: %w", err)
	}

	for _, model := range []interface{}{&models.User{}, &models.Table{}, &models.Reservation{}} {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return report, err
		}
		entry := TableReport{Name: stmt.Schema.Table, Exists: db.Migrator().HasTable(model)}
		if entry.Exists {
			if err := db.WithContext(ctx).Model(model).Count(&entry.Rows).Error; err != nil {
				return report, err
			}
		}
		report.Tables = append(report.Tables, entry)
	}
	return report, nil
}
