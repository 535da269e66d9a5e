package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-reservation/database"
	"github.com/yeremiapane/restaurant-reservation/models"
	"gorm.io/gorm"
)

var (
	adminPrincipal    = models.Principal{ID: 1, Email: "admin@example.com", Role: models.RoleAdmin}
	staffPrincipal    = models.Principal{ID: 2, Email: "staff@example.com", Role: models.RoleStaff}
	customerPrincipal = models.Principal{ID: 3, Email: "ann@example.com", Role: models.RoleCustomer}
	otherCustomer     = models.Principal{ID: 4, Email: "bob@example.com", Role: models.RoleCustomer}
)

type publishedEvent struct {
	Event string
	Data  interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(event string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Event: event, Data: data})
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Event
	}
	return out
}

type testEnv struct {
	ctx       context.Context
	db        *gorm.DB
	publisher *recordingPublisher
	tables    *TableRegistry
	resolver  *AvailabilityResolver
	sync      *StatusSynchronizer
	ledger    *ReservationLedger
	users     *UserDirectory
	reports   *Reports
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)

	pub := &recordingPublisher{}
	resolver := NewAvailabilityResolver(db)
	sync := NewStatusSynchronizer(pub)
	return &testEnv{
		ctx:       context.Background(),
		db:        db,
		publisher: pub,
		tables:    NewTableRegistry(db, pub),
		resolver:  resolver,
		sync:      sync,
		ledger:    NewReservationLedger(db, resolver, sync, pub),
		users:     NewUserDirectory(db),
		reports:   NewReports(db),
	}
}

func (e *testEnv) addTable(t *testing.T, number string, capacity int) *models.Table {
	t.Helper()
	table, err := e.tables.Create(e.ctx, TableInput{TableNumber: number, Capacity: capacity}, adminPrincipal)
	require.NoError(t, err)
	return table
}

func (e *testEnv) tableStatus(t *testing.T, number string) string {
	t.Helper()
	table, err := e.tables.GetByNumber(e.ctx, number)
	require.NoError(t, err)
	return table.Status
}

func (e *testEnv) book(t *testing.T, p models.Principal, email, number, date, clock string, party int) *models.Reservation {
	t.Helper()
	r, err := e.ledger.Create(e.ctx, bookingInput(email, number, date, clock, party), p)
	require.NoError(t, err)
	return r
}

func bookingInput(email, number, date, clock string, party int) ReservationInput {
	return ReservationInput{
		CustomerName:    "Guest " + email,
		CustomerEmail:   email,
		CustomerPhone:   "555-0100",
		TableNumber:     number,
		ReservationDate: date,
		ReservationTime: clock,
		PartySize:       party,
	}
}

func tableNumbers(tables []models.Table) []string {
	out := make([]string, len(tables))
	for i, t := range tables {
		out[i] = t.TableNumber
	}
	return out
}
