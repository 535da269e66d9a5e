package models

import (
	"strings"
	"time"
)

const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"

	RankJunior    = "junior"
	RankSenior    = "senior"
	RankManager   = "manager"
	RankExecutive = "executive"

	MinUsernameLength = 3
	MaxUsernameLength = 30
)

var (
	Roles      = []string{RoleCustomer, RoleStaff, RoleAdmin}
	StaffRoles = []string{RoleStaff, RoleAdmin}
	Ranks      = []string{RankJunior, RankSenior, RankManager, RankExecutive}
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	Role      string    `gorm:"type:varchar(20);not null;default:'customer';index" json:"role"`
	Salary    float64   `gorm:"not null;default:0" json:"salary"`
	Rank      string    `gorm:"type:varchar(20);not null;default:'junior'" json:"rank"`
	Phone     string    `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Address   string    `gorm:"type:varchar(255)" json:"address,omitempty"`
	JoinDate  time.Time `json:"join_date"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Principal is the authenticated actor attached to a request.
type Principal struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (p Principal) IsCustomer() bool {
	return p.Role == RoleCustomer
}

// IsStaff is true for staff and admin principals.
func (p Principal) IsStaff() bool {
	return p.Role == RoleStaff || p.Role == RoleAdmin
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Owns reports whether the principal's email matches the given customer email.
func (p Principal) Owns(customerEmail string) bool {
	return NormalizeEmail(p.Email) == NormalizeEmail(customerEmail)
}

func (u User) Principal() Principal {
	return Principal{ID: u.ID, Email: u.Email, Role: u.Role}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func IsValidRole(role string) bool {
	return contains(Roles, role)
}

func IsValidRank(rank string) bool {
	return contains(Ranks, rank)
}
