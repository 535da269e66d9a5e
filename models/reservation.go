package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationSeated    = "seated"
	ReservationCompleted = "completed"
	ReservationCancelled = "cancelled"

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	ReservationStatuses       = []string{ReservationPending, ReservationConfirmed, ReservationSeated, ReservationCompleted, ReservationCancelled}
	ActiveReservationStatuses = []string{ReservationPending, ReservationConfirmed, ReservationSeated}
)

// Reservation books a table for a (date, time) slot. TableNumber is the join
// key to Table; TableID is kept only as an enrichment and may dangle after the
// table is deleted.
type Reservation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CustomerName    string    `gorm:"type:varchar(100);not null" json:"customer_name"`
	CustomerEmail   string    `gorm:"type:varchar(255);not null;index" json:"customer_email"`
	CustomerPhone   string    `gorm:"type:varchar(50);not null" json:"customer_phone"`
	TableID         *uint     `gorm:"index" json:"table_id,omitempty"`
	TableNumber     string    `gorm:"type:varchar(50);not null;index:idx_reservation_slot" json:"table_number"`
	ReservationDate string    `gorm:"type:varchar(10);not null;index:idx_reservation_slot" json:"reservation_date"`
	ReservationTime string    `gorm:"type:varchar(5);not null;index:idx_reservation_slot" json:"reservation_time"`
	PartySize       int       `gorm:"not null" json:"party_size"`
	Status          string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	SpecialRequests string    `gorm:"type:text" json:"special_requests,omitempty"`
	CreatedBy       *uint     `gorm:"index" json:"created_by,omitempty"`
	UpdatedBy       *uint     `json:"updated_by,omitempty"`
	SlotKey         *string   `gorm:"type:varchar(80);uniqueIndex" json:"-"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`

	Table *Table `gorm:"-" json:"table,omitempty"`
}

// BeforeSave keeps SlotKey in step with the status: active reservations claim
// their (table, date, time) slot, finished ones release it by storing NULL.
func (r *Reservation) BeforeSave(tx *gorm.DB) error {
	r.TableNumber = NormalizeTableNumber(r.TableNumber)
	r.CustomerEmail = NormalizeEmail(r.CustomerEmail)
	r.SlotKey = nil
	if r.IsActive() {
		key := SlotKey(r.TableNumber, r.ReservationDate, r.ReservationTime)
		r.SlotKey = &key
	}
	return nil
}

func (r *Reservation) IsActive() bool {
	return IsActiveReservationStatus(r.Status)
}

func SlotKey(tableNumber, date, clock string) string {
	return NormalizeTableNumber(tableNumber) + "|" + date + "|" + clock
}

func IsValidReservationStatus(status string) bool {
	return contains(ReservationStatuses, status)
}

func IsActiveReservationStatus(status string) bool {
	return contains(ActiveReservationStatuses, status)
}

// TableStatusFor is the table status a reservation in the given status
// implies. Unknown statuses report false.
func TableStatusFor(reservationStatus string) (string, bool) {
	switch reservationStatus {
	case ReservationPending, ReservationConfirmed:
		return TableReserved, true
	case ReservationSeated:
		return TableOccupied, true
	case ReservationCompleted, ReservationCancelled:
		return TableAvailable, true
	default:
		return "", false
	}
}
