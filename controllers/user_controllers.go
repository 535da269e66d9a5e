package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

type UserController struct {
	Users     *services.UserDirectory
	JWTSecret []byte
	TokenTTL  time.Duration
}

func NewUserController(users *services.UserDirectory, secret []byte, ttl time.Duration) *UserController {
	return &UserController{Users: users, JWTSecret: secret, TokenTTL: ttl}
}

// Register -> creates a customer account and logs it in
func (uc *UserController) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	user, err := uc.Users.Register(c.Request.Context(), req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	token, err := utils.GenerateToken(uc.JWTSecret, uc.TokenTTL, *user)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "User registered", authPayload(token, user))
}

// Login -> return JWT
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	user, err := uc.Users.Authenticate(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	token, err := utils.GenerateToken(uc.JWTSecret, uc.TokenTTL, *user)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.WithField("user_id", user.ID).Info("login successful")
	utils.RespondJSON(c, http.StatusOK, "Login successful", authPayload(token, user))
}

func (uc *UserController) GetProfile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	user, err := uc.Users.Get(c.Request.Context(), p.ID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", user)
}

func authPayload(token string, user *models.User) gin.H {
	return gin.H{
		"token":     token,
		"user_role": user.Role,
		"user":      user,
	}
}
