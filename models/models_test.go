package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTableNumber(t *testing.T) {
	assert.Equal(t, "T01", NormalizeTableNumber("  t01 "))
	assert.Equal(t, "", NormalizeTableNumber("   "))
}

func TestReservationSlotKeyFollowsStatus(t *testing.T) {
	r := &Reservation{
		TableNumber:     "t01",
		CustomerEmail:   " Jane@Example.com",
		ReservationDate: "2024-01-01",
		ReservationTime: "18:00",
		Status:          ReservationPending,
	}

	assert.NoError(t, r.BeforeSave(nil))
	if assert.NotNil(t, r.SlotKey) {
		assert.Equal(t, "T01|2024-01-01|18:00", *r.SlotKey)
	}
	assert.Equal(t, "T01", r.TableNumber)
	assert.Equal(t, "jane@example.com", r.CustomerEmail)

	r.Status = ReservationSeated
	assert.NoError(t, r.BeforeSave(nil))
	assert.NotNil(t, r.SlotKey)

	for _, status := range []string{ReservationCompleted, ReservationCancelled} {
		r.Status = status
		assert.NoError(t, r.BeforeSave(nil))
		assert.Nil(t, r.SlotKey, status)
	}
}

func TestPrincipal(t *testing.T) {
	customer := Principal{ID: 1, Email: "ann@example.com", Role: RoleCustomer}
	staff := Principal{ID: 2, Email: "bob@example.com", Role: RoleStaff}
	admin := Principal{ID: 3, Email: "root@example.com", Role: RoleAdmin}

	assert.True(t, customer.IsCustomer())
	assert.False(t, customer.IsStaff())
	assert.True(t, staff.IsStaff())
	assert.False(t, staff.IsAdmin())
	assert.True(t, admin.IsStaff())
	assert.True(t, admin.IsAdmin())

	assert.True(t, customer.Owns("ANN@example.com "))
	assert.False(t, customer.Owns("other@example.com"))
}

func TestEnums(t *testing.T) {
	assert.True(t, IsValidTableStatus(TableMaintenance))
	assert.False(t, IsValidTableStatus("dirty"))
	assert.True(t, IsValidLocation(LocationBalcony))
	assert.False(t, IsValidLocation("rooftop"))
	assert.True(t, IsValidReservationStatus(ReservationSeated))
	assert.False(t, IsValidReservationStatus("no_show"))
	assert.True(t, IsActiveReservationStatus(ReservationConfirmed))
	assert.False(t, IsActiveReservationStatus(ReservationCompleted))
	assert.True(t, IsValidRole(RoleStaff))
	assert.True(t, IsValidRank(RankExecutive))
	assert.False(t, IsValidRank("intern"))
}

func TestTableStatusFor(t *testing.T) {
	cases := map[string]string{
		ReservationPending:   TableReserved,
		ReservationConfirmed: TableReserved,
		ReservationSeated:    TableOccupied,
		ReservationCompleted: TableAvailable,
		ReservationCancelled: TableAvailable,
	}
	for status, want := range cases {
		got, ok := TableStatusFor(status)
		assert.True(t, ok, status)
		assert.Equal(t, want, got, status)
	}

	_, ok := TableStatusFor("no_show")
	assert.False(t, ok)
}
