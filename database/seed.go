package database

import (
	"context"
	"fmt"
	"time"

	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the credential of every seeded account.
const DemoPassword = "password123"

var demoUsers = []models.User{
	{Username: "admin", Email: "admin@example.com", Role: models.RoleAdmin, Rank: models.RankExecutive},
	{Username: "staff1", Email: "staff@example.com", Role: models.RoleStaff, Rank: models.RankJunior},
	{Username: "customer1", Email: "customer@example.com", Role: models.RoleCustomer, Rank: models.RankJunior},
}

var demoTables = []models.Table{
	{TableNumber: "T01", Capacity: 2, Location: models.LocationIndoors},
	{TableNumber: "T02", Capacity: 4, Location: models.LocationIndoors},
	{TableNumber: "T03", Capacity: 6, Location: models.LocationIndoors},
	{TableNumber: "T04", Capacity: 4, Location: models.LocationOutdoors},
	{TableNumber: "T05", Capacity: 2, Location: models.LocationOutdoors},
	{TableNumber: "T06", Capacity: 8, Location: models.LocationPrivate, Description: "Private dining room"},
	{TableNumber: "T07", Capacity: 4, Location: models.LocationBalcony},
	{TableNumber: "T08", Capacity: 2, Location: models.LocationBalcony},
}

type SeedResult struct {
	Users        int `json:"users"`
	Tables       int `json:"tables"`
	Reservations int `json:"reservations"`
}

// Seed clears every table and loads the demo data set. The sample
// reservations are dated relative to now and their tables carry the
// matching status.
func Seed(ctx context.Context, db *gorm.DB, now time.Time) (SeedResult, error) {
	var result SeedResult

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return result, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := truncateAll(tx); err != nil {
			return err
		}

		users := make([]models.User, len(demoUsers))
		for i, u := range demoUsers {
			u.Password = string(hash)
			u.IsActive = true
			u.JoinDate = now
			users[i] = u
		}
		if err := tx.Create(&users).Error; err != nil {
			return fmt.Errorf("seed users: %w", err)
		}

		tables := make([]models.Table, len(demoTables))
		for i, t := range demoTables {
			t.Status = models.TableAvailable
			tables[i] = t
		}
		if err := tx.Create(&tables).Error; err != nil {
			return fmt.Errorf("seed tables: %w", err)
		}

		customerID := users[2].ID
		reservations := []models.Reservation{
			{
				CustomerName:    "John Doe",
				CustomerEmail:   "john@example.com",
				CustomerPhone:   "123-456-7890",
				TableID:         &tables[0].ID,
				TableNumber:     tables[0].TableNumber,
				ReservationDate: now.Format(models.DateLayout),
				ReservationTime: "18:00",
				PartySize:       2,
				Status:          models.ReservationConfirmed,
				CreatedBy:       &customerID,
			},
			{
				CustomerName:    "Jane Smith",
				CustomerEmail:   "jane@example.com",
				CustomerPhone:   "987-654-3210",
				TableID:         &tables[1].ID,
				TableNumber:     tables[1].TableNumber,
				ReservationDate: now.AddDate(0, 0, 1).Format(models.DateLayout),
				ReservationTime: "19:00",
				PartySize:       4,
				Status:          models.ReservationPending,
				CreatedBy:       &customerID,
			},
		}
		for i := range reservations {
			r := &reservations[i]
			if err := tx.Create(r).Error; err != nil {
				return fmt.Errorf("seed reservations: %w", err)
			}
			status, _ := models.TableStatusFor(r.Status)
			if err := tx.Model(&models.Table{}).Where("table_number = ?", r.TableNumber).Update("status", status).Error; err != nil {
				return err
			}
		}

		result = SeedResult{Users: len(users), Tables: len(tables), Reservations: len(reservations)}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	utils.InfoLogger.WithField("result", result).Info("database seeded")
	return result, nil
}
