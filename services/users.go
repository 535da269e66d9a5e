package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-reservation/apperror"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Username string `json:"username" binding:"required,username"`
	Email    string `json:"email" binding:"required,useremail"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone" binding:"max=50"`
	Address  string `json:"address" binding:"max=255"`
}

type StaffInput struct {
	Username string     `json:"username" binding:"required,username"`
	Email    string     `json:"email" binding:"required,useremail"`
	Password string     `json:"password" binding:"required,min=6"`
	Role     string     `json:"role" binding:"omitempty,oneof=staff admin"`
	Salary   float64    `json:"salary" binding:"gte=0"`
	Rank     string     `json:"rank" binding:"omitempty,oneof=junior senior manager executive"`
	Phone    string     `json:"phone" binding:"max=50"`
	Address  string     `json:"address" binding:"max=255"`
	JoinDate *time.Time `json:"join_date"`
}

func (in *RegisterInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = models.NormalizeEmail(in.Email)
}

func (in *StaffInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = models.NormalizeEmail(in.Email)
}

// StaffPatch lists the employment attributes an admin may change.
type StaffPatch struct {
	Salary   *float64 `json:"salary"`
	Rank     *string  `json:"rank"`
	IsActive *bool    `json:"is_active"`
	Phone    *string  `json:"phone"`
	Address  *string  `json:"address"`
}

type UserDirectory struct {
	db  *gorm.DB
	now func() time.Time
}

func NewUserDirectory(db *gorm.DB) *UserDirectory {
	return &UserDirectory{db: db, now: time.Now}
}

// Register creates a customer account. The role is never taken from input.
func (d *UserDirectory) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.normalize()
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	user := models.User{
		Username: input.Username,
		Email:    input.Email,
		Role:     models.RoleCustomer,
		Rank:     models.RankJunior,
		Phone:    input.Phone,
		Address:  input.Address,
	}
	if err := d.create(ctx, &user, input.Password); err != nil {
		return nil, err
	}
	utils.InfoLogger.Infof("User %s registered", user.Username)
	return &user, nil
}

// Authenticate checks the credentials of an active account.
func (d *UserDirectory) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := d.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.ErrUnauthorized, "invalid email or password")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperror.New(apperror.ErrUnauthorized, "invalid email or password")
	}
	if !user.IsActive {
		return nil, apperror.New(apperror.ErrUnauthorized, "account is inactive")
	}
	return &user, nil
}

func (d *UserDirectory) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user %d not found", id)
		}
		return nil, err
	}
	return &user, nil
}

func (d *UserDirectory) ListStaff(ctx context.Context, p models.Principal) ([]models.User, error) {
	if err := Authorize(p, ActionManageStaff, ""); err != nil {
		return nil, err
	}
	staff := []models.User{}
	err := d.db.WithContext(ctx).
		Where("role IN ?", models.StaffRoles).
		Order("created_at DESC, id DESC").
		Find(&staff).Error
	if err != nil {
		return nil, err
	}
	return staff, nil
}

func (d *UserDirectory) CreateStaff(ctx context.Context, input StaffInput, p models.Principal) (*models.User, error) {
	if err := Authorize(p, ActionManageStaff, ""); err != nil {
		return nil, err
	}
	input.normalize()
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	user := models.User{
		Username: input.Username,
		Email:    input.Email,
		Role:     input.Role,
		Salary:   input.Salary,
		Rank:     input.Rank,
		Phone:    input.Phone,
		Address:  input.Address,
	}
	if user.Role == "" {
		user.Role = models.RoleStaff
	}
	if user.Rank == "" {
		user.Rank = models.RankJunior
	}
	if input.JoinDate != nil {
		user.JoinDate = *input.JoinDate
	}
	if err := d.create(ctx, &user, input.Password); err != nil {
		return nil, err
	}
	utils.InfoLogger.Infof("Staff %s created by user %d", user.Username, p.ID)
	return &user, nil
}

// UpdateStaff changes employment attributes of a staff or admin account.
func (d *UserDirectory) UpdateStaff(ctx context.Context, id uint, patch StaffPatch, p models.Principal) (*models.User, error) {
	if err := Authorize(p, ActionManageStaff, ""); err != nil {
		return nil, err
	}
	user, err := d.getStaff(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Salary != nil {
		if *patch.Salary < 0 {
			return nil, apperror.Validation("salary must be greater than or equal to 0")
		}
		updates["salary"] = *patch.Salary
	}
	if patch.Rank != nil {
		if !models.IsValidRank(*patch.Rank) {
			return nil, apperror.Validation("invalid rank %q", *patch.Rank)
		}
		updates["rank"] = *patch.Rank
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}
	if patch.Phone != nil {
		updates["phone"] = *patch.Phone
	}
	if patch.Address != nil {
		updates["address"] = *patch.Address
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := d.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return d.Get(ctx, id)
}

func (d *UserDirectory) DeleteStaff(ctx context.Context, id uint, p models.Principal) error {
	if err := Authorize(p, ActionManageStaff, ""); err != nil {
		return err
	}
	user, err := d.getStaff(ctx, id)
	if err != nil {
		return err
	}
	if err := d.db.WithContext(ctx).Delete(user).Error; err != nil {
		return err
	}
	utils.InfoLogger.Infof("Staff %s deleted by user %d", user.Username, p.ID)
	return nil
}

func (d *UserDirectory) getStaff(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := d.db.WithContext(ctx).Where("role IN ?", models.StaffRoles).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("staff %d not found", id)
		}
		return nil, err
	}
	return &user, nil
}

func (d *UserDirectory) create(ctx context.Context, user *models.User, password string) error {
	db := d.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperror.Conflict("username %s is already taken", user.Username)
	}
	if err := db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperror.Conflict("email %s is already registered", user.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hash)
	user.IsActive = true
	if user.JoinDate.IsZero() {
		user.JoinDate = d.now()
	}

	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("username or email already exists")
		}
		return err
	}
	return nil
}
