package services

import (
	"context"

	"github.com/yeremiapane/restaurant-reservation/apperror"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"gorm.io/gorm"
)

// AvailabilityResolver answers which tables are free for a slot. A slot is
// an exact (date, time) pair: there is no duration, so 18:00 and 18:05 on
// the same table never conflict.
type AvailabilityResolver struct {
	db *gorm.DB
}

func NewAvailabilityResolver(db *gorm.DB) *AvailabilityResolver {
	return &AvailabilityResolver{db: db}
}

// using binds the resolver to a transaction.
func (r *AvailabilityResolver) using(tx *gorm.DB) *AvailabilityResolver {
	return &AvailabilityResolver{db: tx}
}

// FindAvailable returns tables seating partySize that are not under
// maintenance and hold no active reservation at exactly (date, clock).
func (r *AvailabilityResolver) FindAvailable(ctx context.Context, date, clock string, partySize int) ([]models.Table, error) {
	if !utils.IsValidDate(date) {
		return nil, apperror.Validation("date must be in YYYY-MM-DD format")
	}
	if !utils.IsValidTime(clock) {
		return nil, apperror.Validation("time must be in HH:MM format")
	}
	if partySize < 1 {
		return nil, apperror.Validation("party_size must be at least 1")
	}

	db := r.db.WithContext(ctx)
	booked := db.Model(&models.Reservation{}).
		Select("table_number").
		Where("reservation_date = ? AND reservation_time = ? AND status IN ?", date, clock, models.ActiveReservationStatuses)

	tables := []models.Table{}
	err := db.Where("capacity >= ? AND status <> ?", partySize, models.TableMaintenance).
		Where("table_number NOT IN (?)", booked).
		Order("capacity ASC, table_number ASC").
		Find(&tables).Error
	if err != nil {
		return nil, err
	}
	return tables, nil
}

// HasConflict reports whether an active reservation other than excludeID
// already holds the slot.
func (r *AvailabilityResolver) HasConflict(ctx context.Context, tableNumber, date, clock string, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Reservation{}).
		Where("table_number = ? AND reservation_date = ? AND reservation_time = ? AND status IN ?",
			models.NormalizeTableNumber(tableNumber), date, clock, models.ActiveReservationStatuses)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
