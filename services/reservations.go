package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-reservation/apperror"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"gorm.io/gorm"
)

const upcomingLimit = 20

type ReservationInput struct {
	CustomerName    string `json:"customer_name" binding:"required,max=100"`
	CustomerEmail   string `json:"customer_email" binding:"required,useremail"`
	CustomerPhone   string `json:"customer_phone" binding:"required,max=50"`
	TableNumber     string `json:"table_number"`
	TableID         *uint  `json:"table_id"`
	ReservationDate string `json:"reservation_date" binding:"required,ymd"`
	ReservationTime string `json:"reservation_time" binding:"required,hhmm"`
	PartySize       int    `json:"party_size" binding:"required,gte=1"`
	SpecialRequests string `json:"special_requests"`
}

func (in *ReservationInput) normalize() {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = models.NormalizeEmail(in.CustomerEmail)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
}

// ReservationPatch holds the editable details of a reservation; nil means
// unchanged. Status is changed through UpdateStatus or Cancel only.
type ReservationPatch struct {
	CustomerName    *string `json:"customer_name"`
	CustomerEmail   *string `json:"customer_email"`
	CustomerPhone   *string `json:"customer_phone"`
	TableNumber     *string `json:"table_number"`
	TableID         *uint   `json:"table_id"`
	ReservationDate *string `json:"reservation_date"`
	ReservationTime *string `json:"reservation_time"`
	PartySize       *int    `json:"party_size"`
	SpecialRequests *string `json:"special_requests"`
}

type ReservationFilter struct {
	Date          string `form:"date"`
	Status        string `form:"status"`
	TableNumber   string `form:"table_number"`
	CustomerEmail string `form:"customer_email"`
	CustomerName  string `form:"customer_name"`
}

// ReservationLedger owns reservation records and runs every booking rule:
// table lookup, capacity, slot conflicts, authorization and status sync.
type ReservationLedger struct {
	db        *gorm.DB
	resolver  *AvailabilityResolver
	sync      *StatusSynchronizer
	publisher Publisher
}

func NewReservationLedger(db *gorm.DB, resolver *AvailabilityResolver, sync *StatusSynchronizer, publisher Publisher) *ReservationLedger {
	return &ReservationLedger{
		db:        db,
		resolver:  resolver,
		sync:      sync,
		publisher: publisherOrNoop(publisher),
	}
}

// Create books a table. Lookup, capacity, slot and ownership checks, the
// insert and the table status update run in one transaction; the unique
// slot key turns a concurrent double booking into SlotConflict.
func (l *ReservationLedger) Create(ctx context.Context, input ReservationInput, p models.Principal) (*models.Reservation, error) {
	input.normalize()
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.TableNumber) == "" && input.TableID == nil {
		return nil, apperror.Validation("table_number or table_id is required")
	}

	var (
		reservation models.Reservation
		change      *TableChange
	)
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := resolveTable(tx, input.TableNumber, input.TableID)
		if err != nil {
			return err
		}

		if input.PartySize > table.Capacity {
			return apperror.New(apperror.ErrCapacityExceeded,
				"party size %d exceeds capacity %d of table %s", input.PartySize, table.Capacity, table.TableNumber)
		}

		taken, err := l.resolver.using(tx).HasConflict(ctx, table.TableNumber, input.ReservationDate, input.ReservationTime, 0)
		if err != nil {
			return err
		}
		if taken {
			return slotConflict(table.TableNumber, input.ReservationDate, input.ReservationTime)
		}

		if err := Authorize(p, ActionCreateReservation, input.CustomerEmail); err != nil {
			return err
		}

		status := models.ReservationPending
		if p.IsStaff() {
			status = models.ReservationConfirmed
		}

		reservation = models.Reservation{
			CustomerName:    input.CustomerName,
			CustomerEmail:   input.CustomerEmail,
			CustomerPhone:   input.CustomerPhone,
			TableID:         &table.ID,
			TableNumber:     table.TableNumber,
			ReservationDate: input.ReservationDate,
			ReservationTime: input.ReservationTime,
			PartySize:       input.PartySize,
			Status:          status,
			SpecialRequests: input.SpecialRequests,
			CreatedBy:       actorID(p),
		}
		if err := tx.Create(&reservation).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return slotConflict(table.TableNumber, input.ReservationDate, input.ReservationTime)
			}
			return err
		}

		change, err = l.sync.Apply(tx, table.TableNumber, status)
		if err != nil {
			return err
		}
		if change != nil {
			table.Status = change.Status
		}
		reservation.Table = table
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.sync.Announce(change)
	l.publisher.Publish(EventReservationCreate, reservation)
	utils.InfoLogger.WithFields(logrus.Fields{
		"reservation_id": reservation.ID,
		"table_number":   reservation.TableNumber,
		"slot":           reservation.ReservationDate + " " + reservation.ReservationTime,
		"status":         reservation.Status,
	}).Info("reservation created")
	return &reservation, nil
}

// UpdateStatus moves a reservation to any status in the enum and projects
// it onto the table. Staff and admins only.
func (l *ReservationLedger) UpdateStatus(ctx context.Context, id uint, status string, p models.Principal) (*models.Reservation, error) {
	if err := Authorize(p, ActionUpdateReservationStatus, ""); err != nil {
		return nil, err
	}
	if !models.IsValidReservationStatus(status) {
		return nil, apperror.New(apperror.ErrInvalidStatus,
			"invalid status %q, must be one of %s", status, strings.Join(models.ReservationStatuses, ", "))
	}
	return l.transition(ctx, id, status, p, nil)
}

// Cancel is open to the owning customer and to staff.
func (l *ReservationLedger) Cancel(ctx context.Context, id uint, p models.Principal) (*models.Reservation, error) {
	return l.transition(ctx, id, models.ReservationCancelled, p, func(r *models.Reservation) error {
		return Authorize(p, ActionCancelReservation, r.CustomerEmail)
	})
}

func (l *ReservationLedger) transition(ctx context.Context, id uint, status string, p models.Principal, check func(*models.Reservation) error) (*models.Reservation, error) {
	var (
		reservation models.Reservation
		change      *TableChange
	)
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findReservation(tx, id, &reservation); err != nil {
			return err
		}
		if check != nil {
			if err := check(&reservation); err != nil {
				return err
			}
		}

		reactivating := !reservation.IsActive() && models.IsActiveReservationStatus(status)
		if reactivating {
			taken, err := l.resolver.using(tx).HasConflict(ctx, reservation.TableNumber, reservation.ReservationDate, reservation.ReservationTime, reservation.ID)
			if err != nil {
				return err
			}
			if taken {
				return slotConflict(reservation.TableNumber, reservation.ReservationDate, reservation.ReservationTime)
			}
		}

		reservation.Status = status
		reservation.UpdatedBy = actorID(p)
		if err := tx.Save(&reservation).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return slotConflict(reservation.TableNumber, reservation.ReservationDate, reservation.ReservationTime)
			}
			return err
		}

		var err error
		change, err = l.sync.Apply(tx, reservation.TableNumber, status)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.sync.Announce(change)
	l.attachTables(ctx, []*models.Reservation{&reservation})
	l.publisher.Publish(EventReservationUpdate, reservation)
	utils.InfoLogger.WithFields(logrus.Fields{
		"reservation_id": reservation.ID,
		"status":         status,
		"actor":          p.ID,
	}).Info("reservation status updated")
	return &reservation, nil
}

// UpdateDetails edits customer, party and slot details. Capacity and slot
// conflicts are re-checked whenever the table, date, time or party size
// changes.
func (l *ReservationLedger) UpdateDetails(ctx context.Context, id uint, patch ReservationPatch, p models.Principal) (*models.Reservation, error) {
	if err := Authorize(p, ActionUpdateReservationDetails, ""); err != nil {
		return nil, err
	}

	var (
		reservation models.Reservation
		changes     []*TableChange
	)
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findReservation(tx, id, &reservation); err != nil {
			return err
		}
		previousTable := reservation.TableNumber

		if err := applyDetails(&reservation, patch); err != nil {
			return err
		}

		tableChanged := patch.TableNumber != nil || patch.TableID != nil
		var table *models.Table
		if tableChanged {
			var number string
			if patch.TableNumber != nil {
				number = *patch.TableNumber
			}
			resolved, err := resolveTable(tx, number, patch.TableID)
			if err != nil {
				return err
			}
			table = resolved
			reservation.TableID = &table.ID
			reservation.TableNumber = table.TableNumber
		}
		tableChanged = reservation.TableNumber != previousTable

		slotChanged := tableChanged || patch.ReservationDate != nil || patch.ReservationTime != nil
		if slotChanged || patch.PartySize != nil {
			if table == nil {
				resolved, err := findTableByNumber(tx, reservation.TableNumber)
				if err != nil {
					return err
				}
				table = resolved
			}
			if reservation.PartySize > table.Capacity {
				return apperror.New(apperror.ErrCapacityExceeded,
					"party size %d exceeds capacity %d of table %s", reservation.PartySize, table.Capacity, table.TableNumber)
			}
		}
		if slotChanged && reservation.IsActive() {
			taken, err := l.resolver.using(tx).HasConflict(ctx, reservation.TableNumber, reservation.ReservationDate, reservation.ReservationTime, reservation.ID)
			if err != nil {
				return err
			}
			if taken {
				return slotConflict(reservation.TableNumber, reservation.ReservationDate, reservation.ReservationTime)
			}
		}

		reservation.UpdatedBy = actorID(p)
		if err := tx.Save(&reservation).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return slotConflict(reservation.TableNumber, reservation.ReservationDate, reservation.ReservationTime)
			}
			return err
		}

		if tableChanged && reservation.IsActive() {
			freed, err := l.sync.Apply(tx, previousTable, models.ReservationCancelled)
			if err != nil {
				return err
			}
			taken, err := l.sync.Apply(tx, reservation.TableNumber, reservation.Status)
			if err != nil {
				return err
			}
			changes = append(changes, freed, taken)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.sync.Announce(changes...)
	l.attachTables(ctx, []*models.Reservation{&reservation})
	l.publisher.Publish(EventReservationUpdate, reservation)
	utils.InfoLogger.WithField("reservation_id", reservation.ID).Info("reservation details updated")
	return &reservation, nil
}

// Delete removes a reservation and frees its table as a cancellation would.
func (l *ReservationLedger) Delete(ctx context.Context, id uint, p models.Principal) error {
	if err := Authorize(p, ActionDeleteReservation, ""); err != nil {
		return err
	}

	var (
		reservation models.Reservation
		change      *TableChange
	)
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findReservation(tx, id, &reservation); err != nil {
			return err
		}
		if err := tx.Delete(&reservation).Error; err != nil {
			return err
		}

		var err error
		change, err = l.sync.Apply(tx, reservation.TableNumber, models.ReservationCancelled)
		return err
	})
	if err != nil {
		return err
	}

	l.sync.Announce(change)
	l.publisher.Publish(EventReservationDelete, reservation)
	utils.InfoLogger.WithField("reservation_id", reservation.ID).Info("reservation deleted")
	return nil
}

// List returns reservations newest slot first. Date and time are compared
// as strings, which is correct for YYYY-MM-DD and zero-padded HH:MM.
// Customers only ever see their own reservations, whatever the filter says.
func (l *ReservationLedger) List(ctx context.Context, filter ReservationFilter, p models.Principal) ([]models.Reservation, error) {
	if err := Authorize(p, ActionViewReservation, p.Email); err != nil {
		return nil, err
	}

	query := l.db.WithContext(ctx).Model(&models.Reservation{})
	if p.IsStaff() {
		if email := models.NormalizeEmail(filter.CustomerEmail); email != "" {
			query = query.Where("customer_email = ?", email)
		}
	} else {
		query = query.Where("customer_email = ?", models.NormalizeEmail(p.Email))
	}
	if filter.Date != "" {
		query = query.Where("reservation_date = ?", filter.Date)
	}
	if filter.Status != "" && filter.Status != "all" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TableNumber != "" && filter.TableNumber != "all" {
		query = query.Where("table_number = ?", models.NormalizeTableNumber(filter.TableNumber))
	}
	if name := strings.TrimSpace(filter.CustomerName); name != "" {
		query = query.Where("LOWER(customer_name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}

	reservations := []models.Reservation{}
	if err := query.Order("reservation_date DESC, reservation_time DESC, id DESC").Find(&reservations).Error; err != nil {
		return nil, err
	}
	l.attachTables(ctx, pointers(reservations))
	return reservations, nil
}

func (l *ReservationLedger) Get(ctx context.Context, id uint, p models.Principal) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := findReservation(l.db.WithContext(ctx), id, &reservation); err != nil {
		return nil, err
	}
	if err := Authorize(p, ActionViewReservation, reservation.CustomerEmail); err != nil {
		return nil, err
	}
	l.attachTables(ctx, []*models.Reservation{&reservation})
	return &reservation, nil
}

// Today lists every reservation on date in time order.
func (l *ReservationLedger) Today(ctx context.Context, date string, p models.Principal) ([]models.Reservation, error) {
	if err := Authorize(p, ActionViewTodayReservations, ""); err != nil {
		return nil, err
	}
	if !utils.IsValidDate(date) {
		return nil, apperror.Validation("date must be in YYYY-MM-DD format")
	}

	reservations := []models.Reservation{}
	err := l.db.WithContext(ctx).
		Where("reservation_date = ?", date).
		Order("reservation_time ASC, id ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	l.attachTables(ctx, pointers(reservations))
	return reservations, nil
}

// Upcoming lists pending and confirmed reservations from fromDate on,
// soonest first.
func (l *ReservationLedger) Upcoming(ctx context.Context, fromDate string, p models.Principal) ([]models.Reservation, error) {
	if err := Authorize(p, ActionViewReservation, p.Email); err != nil {
		return nil, err
	}
	if !utils.IsValidDate(fromDate) {
		return nil, apperror.Validation("date must be in YYYY-MM-DD format")
	}

	query := l.db.WithContext(ctx).
		Where("reservation_date >= ? AND status IN ?", fromDate, []string{models.ReservationPending, models.ReservationConfirmed})
	if !p.IsStaff() {
		query = query.Where("customer_email = ?", models.NormalizeEmail(p.Email))
	}

	reservations := []models.Reservation{}
	err := query.Order("reservation_date ASC, reservation_time ASC, id ASC").Limit(upcomingLimit).Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	l.attachTables(ctx, pointers(reservations))
	return reservations, nil
}

// attachTables fills the table snapshot of each reservation whose table
// still exists. Lookup failures leave the snapshots empty.
func (l *ReservationLedger) attachTables(ctx context.Context, reservations []*models.Reservation) {
	if len(reservations) == 0 {
		return
	}
	numbers := make([]string, 0, len(reservations))
	for _, r := range reservations {
		numbers = append(numbers, r.TableNumber)
	}

	var tables []models.Table
	if err := l.db.WithContext(ctx).Where("table_number IN ?", numbers).Find(&tables).Error; err != nil {
		utils.ErrorLogger.WithError(err).Warn("failed to load table snapshots")
		return
	}
	byNumber := make(map[string]models.Table, len(tables))
	for _, t := range tables {
		byNumber[t.TableNumber] = t
	}
	for _, r := range reservations {
		if t, ok := byNumber[r.TableNumber]; ok {
			table := t
			r.Table = &table
		}
	}
}

func applyDetails(r *models.Reservation, patch ReservationPatch) error {
	if patch.CustomerName != nil {
		name := strings.TrimSpace(*patch.CustomerName)
		if name == "" {
			return apperror.Validation("customer_name is required")
		}
		r.CustomerName = name
	}
	if patch.CustomerEmail != nil {
		if !utils.IsValidEmail(*patch.CustomerEmail) {
			return apperror.Validation("customer_email must be a valid email address")
		}
		r.CustomerEmail = models.NormalizeEmail(*patch.CustomerEmail)
	}
	if patch.CustomerPhone != nil {
		phone := strings.TrimSpace(*patch.CustomerPhone)
		if phone == "" {
			return apperror.Validation("customer_phone is required")
		}
		r.CustomerPhone = phone
	}
	if patch.ReservationDate != nil {
		if !utils.IsValidDate(*patch.ReservationDate) {
			return apperror.Validation("reservation_date must be in YYYY-MM-DD format")
		}
		r.ReservationDate = *patch.ReservationDate
	}
	if patch.ReservationTime != nil {
		if !utils.IsValidTime(*patch.ReservationTime) {
			return apperror.Validation("reservation_time must be in HH:MM format")
		}
		r.ReservationTime = *patch.ReservationTime
	}
	if patch.PartySize != nil {
		if *patch.PartySize < 1 {
			return apperror.Validation("party_size must be at least 1")
		}
		r.PartySize = *patch.PartySize
	}
	if patch.SpecialRequests != nil {
		r.SpecialRequests = *patch.SpecialRequests
	}
	return nil
}

// resolveTable prefers the table number, the canonical reference, and falls
// back to the id.
func resolveTable(tx *gorm.DB, number string, id *uint) (*models.Table, error) {
	if strings.TrimSpace(number) != "" {
		return findTableByNumber(tx, number)
	}
	if id == nil {
		return nil, apperror.Validation("table_number or table_id is required")
	}

	var table models.Table
	if err := tx.First(&table, *id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("table %d not found", *id)
		}
		return nil, err
	}
	return &table, nil
}

func findReservation(db *gorm.DB, id uint, out *models.Reservation) error {
	if err := db.First(out, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("reservation %d not found", id)
		}
		return err
	}
	return nil
}

func slotConflict(tableNumber, date, clock string) error {
	return apperror.New(apperror.ErrSlotConflict,
		"table %s is already reserved on %s at %s", tableNumber, date, clock)
}

func actorID(p models.Principal) *uint {
	if p.ID == 0 {
		return nil
	}
	id := p.ID
	return &id
}

func pointers(reservations []models.Reservation) []*models.Reservation {
	out := make([]*models.Reservation, len(reservations))
	for i := range reservations {
		out[i] = &reservations[i]
	}
	return out
}
