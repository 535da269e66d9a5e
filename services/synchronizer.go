package services

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-reservation/apperror"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"gorm.io/gorm"
)

// TableChange records one projection of a reservation status onto a table.
type TableChange struct {
	TableID        uint   `json:"table_id"`
	TableNumber    string `json:"table_number"`
	PreviousStatus string `json:"previous_status"`
	Status         string `json:"status"`
}

// StatusSynchronizer keeps a table's status in step with the reservation
// that touched it last. There is no recomputation across the table's other
// reservations.
type StatusSynchronizer struct {
	publisher Publisher
}

func NewStatusSynchronizer(publisher Publisher) *StatusSynchronizer {
	return &StatusSynchronizer{publisher: publisherOrNoop(publisher)}
}

// Apply writes the table status implied by reservationStatus inside tx.
// A missing table is not an error: the reservation is orphaned and nil is
// returned.
func (s *StatusSynchronizer) Apply(tx *gorm.DB, tableNumber, reservationStatus string) (*TableChange, error) {
	status, ok := models.TableStatusFor(reservationStatus)
	if !ok {
		return nil, apperror.New(apperror.ErrInvalidStatus, "invalid reservation status %q", reservationStatus)
	}

	number := models.NormalizeTableNumber(tableNumber)
	var table models.Table
	if err := tx.Where("table_number = ?", number).First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.InfoLogger.WithField("table_number", number).Warn("status sync skipped: table not found")
			return nil, nil
		}
		return nil, err
	}

	change := &TableChange{
		TableID:        table.ID,
		TableNumber:    table.TableNumber,
		PreviousStatus: table.Status,
		Status:         status,
	}
	if err := tx.Model(&table).Update("status", status).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"table_number": change.TableNumber,
		"from":         change.PreviousStatus,
		"to":           change.Status,
	}).Debug("table status synchronized")
	return change, nil
}

// Announce publishes applied changes. Call it only after the transaction
// that applied them has committed.
func (s *StatusSynchronizer) Announce(changes ...*TableChange) {
	for _, change := range changes {
		if change != nil {
			s.publisher.Publish(EventTableStatus, change)
		}
	}
}
