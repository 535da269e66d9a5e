package services

import (
	"context"
	"errors"

	"github.com/yeremiapane/restaurant-reservation/apperror"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"gorm.io/gorm"
)

type TableInput struct {
	TableNumber string `json:"table_number" binding:"required,tablenumber"`
	Capacity    int    `json:"capacity" binding:"required,min=1,max=20"`
	Location    string `json:"location" binding:"omitempty,oneof=indoors outdoors balcony private"`
	Status      string `json:"status" binding:"omitempty,oneof=available occupied reserved maintenance"`
	Description string `json:"description" binding:"max=255"`
}

// TablePatch holds the fields of a partial table update; nil means unchanged.
type TablePatch struct {
	TableNumber *string `json:"table_number"`
	Capacity    *int    `json:"capacity"`
	Location    *string `json:"location"`
	Status      *string `json:"status"`
	Description *string `json:"description"`
}

type TableFilter struct {
	Status      string `form:"status"`
	Location    string `form:"location"`
	MinCapacity int    `form:"min_capacity"`
}

type TableRegistry struct {
	db        *gorm.DB
	publisher Publisher
}

func NewTableRegistry(db *gorm.DB, publisher Publisher) *TableRegistry {
	return &TableRegistry{db: db, publisher: publisherOrNoop(publisher)}
}

func (r *TableRegistry) Create(ctx context.Context, input TableInput, p models.Principal) (*models.Table, error) {
	if err := Authorize(p, ActionManageTables, ""); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	table := models.Table{
		TableNumber: models.NormalizeTableNumber(input.TableNumber),
		Capacity:    input.Capacity,
		Location:    input.Location,
		Status:      input.Status,
		Description: input.Description,
	}
	if table.Location == "" {
		table.Location = models.LocationIndoors
	}
	if table.Status == "" {
		table.Status = models.TableAvailable
	}

	db := r.db.WithContext(ctx)
	if err := ensureNumberFree(db, table.TableNumber, 0); err != nil {
		return nil, err
	}
	if err := db.Create(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("table %s already exists", table.TableNumber)
		}
		return nil, err
	}

	r.publisher.Publish(EventTableCreate, table)
	utils.InfoLogger.Infof("New table created: %s (capacity=%d)", table.TableNumber, table.Capacity)
	return &table, nil
}

// List returns tables sorted by table number.
func (r *TableRegistry) List(ctx context.Context, filter TableFilter) ([]models.Table, error) {
	query := r.db.WithContext(ctx).Model(&models.Table{})
	if filter.Status != "" && filter.Status != "all" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Location != "" && filter.Location != "all" {
		query = query.Where("location = ?", filter.Location)
	}
	if filter.MinCapacity > 0 {
		query = query.Where("capacity >= ?", filter.MinCapacity)
	}

	tables := []models.Table{}
	if err := query.Order("table_number ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *TableRegistry) Get(ctx context.Context, id uint) (*models.Table, error) {
	var table models.Table
	if err := r.db.WithContext(ctx).First(&table, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("table %d not found", id)
		}
		return nil, err
	}
	return &table, nil
}

func (r *TableRegistry) GetByNumber(ctx context.Context, number string) (*models.Table, error) {
	return findTableByNumber(r.db.WithContext(ctx), number)
}

// Update applies a direct admin edit. A status change here does not go
// through the synchronizer.
func (r *TableRegistry) Update(ctx context.Context, id uint, patch TablePatch, p models.Principal) (*models.Table, error) {
	if err := Authorize(p, ActionManageTables, ""); err != nil {
		return nil, err
	}
	table, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.update(ctx, table, patch)
}

func (r *TableRegistry) UpdateByNumber(ctx context.Context, number string, patch TablePatch, p models.Principal) (*models.Table, error) {
	if err := Authorize(p, ActionManageTables, ""); err != nil {
		return nil, err
	}
	table, err := r.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return r.update(ctx, table, patch)
}

func (r *TableRegistry) update(ctx context.Context, table *models.Table, patch TablePatch) (*models.Table, error) {
	db := r.db.WithContext(ctx)

	if patch.TableNumber != nil {
		number := models.NormalizeTableNumber(*patch.TableNumber)
		if !utils.IsValidTableNumber(number) {
			return nil, apperror.Validation("table_number must be a valid table number")
		}
		if number != table.TableNumber {
			if err := ensureNumberFree(db, number, table.ID); err != nil {
				return nil, err
			}
		}
		table.TableNumber = number
	}
	if patch.Capacity != nil {
		table.Capacity = *patch.Capacity
	}
	if patch.Location != nil {
		table.Location = *patch.Location
	}
	if patch.Status != nil {
		table.Status = *patch.Status
	}
	if patch.Description != nil {
		table.Description = *patch.Description
	}
	if err := validateTable(table); err != nil {
		return nil, err
	}

	if err := db.Save(table).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("table %s already exists", table.TableNumber)
		}
		return nil, err
	}

	r.publisher.Publish(EventTableUpdate, table)
	utils.InfoLogger.Infof("Table %s updated (status=%s)", table.TableNumber, table.Status)
	return table, nil
}

// Delete removes the table only; reservations keep their table number.
func (r *TableRegistry) Delete(ctx context.Context, id uint, p models.Principal) error {
	if err := Authorize(p, ActionManageTables, ""); err != nil {
		return err
	}
	table, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(table).Error; err != nil {
		return err
	}

	r.publisher.Publish(EventTableDelete, table)
	utils.InfoLogger.Infof("Table %s deleted", table.TableNumber)
	return nil
}

func validateTable(t *models.Table) error {
	if t.Capacity < models.MinTableCapacity || t.Capacity > models.MaxTableCapacity {
		return apperror.Validation("capacity must be between %d and %d", models.MinTableCapacity, models.MaxTableCapacity)
	}
	if !models.IsValidLocation(t.Location) {
		return apperror.Validation("invalid location %q", t.Location)
	}
	if !models.IsValidTableStatus(t.Status) {
		return apperror.Validation("invalid table status %q", t.Status)
	}
	return nil
}

func ensureNumberFree(db *gorm.DB, number string, exceptID uint) error {
	var count int64
	query := db.Model(&models.Table{}).Where("table_number = ?", number)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperror.Conflict("table %s already exists", number)
	}
	return nil
}

func findTableByNumber(db *gorm.DB, number string) (*models.Table, error) {
	normalized := models.NormalizeTableNumber(number)
	var table models.Table
	if err := db.Where("table_number = ?", normalized).First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("table %s not found", normalized)
		}
		return nil, err
	}
	return &table, nil
}
