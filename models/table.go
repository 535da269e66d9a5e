package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	TableAvailable   = "available"
	TableOccupied    = "occupied"
	TableReserved    = "reserved"
	TableMaintenance = "maintenance"

	LocationIndoors  = "indoors"
	LocationOutdoors = "outdoors"
	LocationBalcony  = "balcony"
	LocationPrivate  = "private"

	MinTableCapacity = 1
	MaxTableCapacity = 20
)

var (
	TableStatuses  = []string{TableAvailable, TableOccupied, TableReserved, TableMaintenance}
	TableLocations = []string{LocationIndoors, LocationOutdoors, LocationBalcony, LocationPrivate}
)

type Table struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TableNumber string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"table_number"`
	Capacity    int       `gorm:"not null;index" json:"capacity"`
	Location    string    `gorm:"type:varchar(20);not null;default:'indoors';index" json:"location"`
	Status      string    `gorm:"type:varchar(20);not null;default:'available';index" json:"status"`
	Description string    `gorm:"type:varchar(255);not null;default:''" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// NormalizeTableNumber is the canonical form used for storage and lookups.
func NormalizeTableNumber(number string) string {
	return strings.ToUpper(strings.TrimSpace(number))
}

func (t *Table) BeforeSave(tx *gorm.DB) error {
	t.TableNumber = NormalizeTableNumber(t.TableNumber)
	return nil
}

func IsValidTableStatus(status string) bool {
	return contains(TableStatuses, status)
}

func IsValidLocation(location string) bool {
	return contains(TableLocations, location)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
