package services

import (
	"context"
	"math"

	"github.com/yeremiapane/restaurant-reservation/apperror"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"gorm.io/gorm"
)

// RevenuePerGuest is the flat per-head estimate used by analytics.
const RevenuePerGuest = 50.0

const (
	recentReservationsLimit = 10
	peakHoursLimit          = 5
	topCustomersLimit       = 10
)

type DashboardStats struct {
	TotalTables                int64                `json:"total_tables"`
	AvailableTables            int64                `json:"available_tables"`
	TodayReservations          int64                `json:"today_reservations"`
	TodayConfirmedReservations int64                `json:"today_confirmed_reservations"`
	RecentReservations         []models.Reservation `json:"recent_reservations"`
	OccupancyRate              float64              `json:"occupancy_rate"`
}

type TableStat struct {
	TableNumber       string  `json:"table_number"`
	TotalReservations int64   `json:"total_reservations"`
	AveragePartySize  float64 `json:"average_party_size"`
	TotalRevenue      float64 `json:"total_revenue"`
}

type PeakHour struct {
	ReservationTime string `json:"reservation_time"`
	Count           int64  `gorm:"column:total" json:"count"`
}

type CustomerStat struct {
	CustomerEmail string  `json:"customer_email"`
	TotalVisits   int64   `json:"total_visits"`
	TotalSpent    float64 `json:"total_spent"`
}

type StaffStat struct {
	UserID            uint    `json:"user_id"`
	StaffName         string  `json:"staff_name"`
	TotalReservations int64   `json:"total_reservations"`
	TotalRevenue      float64 `json:"total_revenue"`
}

type AnalyticsSummary struct {
	TotalRevenue      float64    `json:"total_revenue"`
	TotalReservations int64      `json:"total_reservations"`
	AveragePartySize  float64    `json:"average_party_size"`
	BestTable         *TableStat `json:"best_table"`
}

type Analytics struct {
	From             string             `json:"from"`
	To               string             `json:"to"`
	DailyRevenue     map[string]float64 `json:"daily_revenue"`
	TableStats       []TableStat        `json:"table_stats"`
	PeakHours        []PeakHour         `json:"peak_hours"`
	CustomerStats    []CustomerStat     `json:"customer_stats"`
	StaffPerformance []StaffStat        `json:"staff_performance"`
	Summary          AnalyticsSummary   `json:"summary"`
}

// Reports aggregates the ledger and the registry. It never writes.
type Reports struct {
	db *gorm.DB
}

func NewReports(db *gorm.DB) *Reports {
	return &Reports{db: db}
}

func (r *Reports) DashboardStats(ctx context.Context, today string, p models.Principal) (*DashboardStats, error) {
	if err := Authorize(p, ActionViewDashboard, ""); err != nil {
		return nil, err
	}
	if !utils.IsValidDate(today) {
		return nil, apperror.Validation("date must be in YYYY-MM-DD format")
	}

	db := r.db.WithContext(ctx)
	stats := &DashboardStats{RecentReservations: []models.Reservation{}}

	if err := db.Model(&models.Table{}).Count(&stats.TotalTables).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Table{}).Where("status = ?", models.TableAvailable).Count(&stats.AvailableTables).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Reservation{}).Where("reservation_date = ?", today).Count(&stats.TodayReservations).Error; err != nil {
		return nil, err
	}
	err := db.Model(&models.Reservation{}).
		Where("reservation_date = ? AND status IN ?", today, []string{models.ReservationConfirmed, models.ReservationSeated}).
		Count(&stats.TodayConfirmedReservations).Error
	if err != nil {
		return nil, err
	}
	if err := db.Order("created_at DESC, id DESC").Limit(recentReservationsLimit).Find(&stats.RecentReservations).Error; err != nil {
		return nil, err
	}

	if stats.TotalTables > 0 {
		rate := float64(stats.TotalTables-stats.AvailableTables) / float64(stats.TotalTables) * 100
		stats.OccupancyRate = math.Round(rate*100) / 100
	}
	return stats, nil
}

// Analytics summarizes the reservations dated within [from, to]. Revenue,
// table and peak-hour figures count only seated and completed bookings.
func (r *Reports) Analytics(ctx context.Context, from, to string, p models.Principal) (*Analytics, error) {
	if err := Authorize(p, ActionViewAnalytics, ""); err != nil {
		return nil, err
	}
	if !utils.IsValidDate(from) || !utils.IsValidDate(to) {
		return nil, apperror.Validation("from and to must be in YYYY-MM-DD format")
	}
	if from > to {
		return nil, apperror.Validation("from must not be after to")
	}

	db := r.db.WithContext(ctx)
	served := []string{models.ReservationCompleted, models.ReservationSeated}
	inRange := func() *gorm.DB {
		return db.Model(&models.Reservation{}).Where("reservations.reservation_date BETWEEN ? AND ?", from, to)
	}

	out := &Analytics{
		From:             from,
		To:               to,
		DailyRevenue:     map[string]float64{},
		TableStats:       []TableStat{},
		PeakHours:        []PeakHour{},
		CustomerStats:    []CustomerStat{},
		StaffPerformance: []StaffStat{},
	}

	var daily []struct {
		ReservationDate string
		Guests          int64
		Reservations    int64
	}
	err := inRange().
		Select("reservation_date, SUM(party_size) AS guests, COUNT(*) AS reservations").
		Where("status IN ?", served).
		Group("reservation_date").
		Scan(&daily).Error
	if err != nil {
		return nil, err
	}
	var guests int64
	for _, d := range daily {
		out.DailyRevenue[d.ReservationDate] = float64(d.Guests) * RevenuePerGuest
		out.Summary.TotalReservations += d.Reservations
		guests += d.Guests
	}
	out.Summary.TotalRevenue = float64(guests) * RevenuePerGuest
	if out.Summary.TotalReservations > 0 {
		out.Summary.AveragePartySize = round2(float64(guests) / float64(out.Summary.TotalReservations))
	}

	var tables []struct {
		TableNumber       string
		TotalReservations int64
		AveragePartySize  float64
		Guests            int64
	}
	err = inRange().
		Select("table_number, COUNT(*) AS total_reservations, AVG(party_size) AS average_party_size, SUM(party_size) AS guests").
		Where("status IN ?", served).
		Group("table_number").
		Order("guests DESC, table_number ASC").
		Scan(&tables).Error
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		out.TableStats = append(out.TableStats, TableStat{
			TableNumber:       t.TableNumber,
			TotalReservations: t.TotalReservations,
			AveragePartySize:  round2(t.AveragePartySize),
			TotalRevenue:      float64(t.Guests) * RevenuePerGuest,
		})
	}
	if len(out.TableStats) > 0 {
		best := out.TableStats[0]
		out.Summary.BestTable = &best
	}

	err = inRange().
		Select("reservation_time, COUNT(*) AS total").
		Where("status IN ?", served).
		Group("reservation_time").
		Order("total DESC, reservation_time ASC").
		Limit(peakHoursLimit).
		Scan(&out.PeakHours).Error
	if err != nil {
		return nil, err
	}

	var customers []struct {
		CustomerEmail string
		TotalVisits   int64
		Guests        int64
	}
	err = inRange().
		Select("customer_email, COUNT(*) AS total_visits, SUM(party_size) AS guests").
		Group("customer_email").
		Order("total_visits DESC, customer_email ASC").
		Limit(topCustomersLimit).
		Scan(&customers).Error
	if err != nil {
		return nil, err
	}
	for _, c := range customers {
		out.CustomerStats = append(out.CustomerStats, CustomerStat{
			CustomerEmail: c.CustomerEmail,
			TotalVisits:   c.TotalVisits,
			TotalSpent:    float64(c.Guests) * RevenuePerGuest,
		})
	}

	var staff []struct {
		UserID            uint
		StaffName         string
		TotalReservations int64
		Guests            int64
	}
	err = inRange().
		Select("users.id AS user_id, users.username AS staff_name, COUNT(*) AS total_reservations, SUM(reservations.party_size) AS guests").
		Joins("JOIN users ON users.id = reservations.created_by").
		Group("users.id, users.username").
		Order("guests DESC, users.id ASC").
		Scan(&staff).Error
	if err != nil {
		return nil, err
	}
	for _, s := range staff {
		out.StaffPerformance = append(out.StaffPerformance, StaffStat{
			UserID:            s.UserID,
			StaffName:         s.StaffName,
			TotalReservations: s.TotalReservations,
			TotalRevenue:      float64(s.Guests) * RevenuePerGuest,
		})
	}

	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
