package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-reservation/apperror"
	"github.com/yeremiapane/restaurant-reservation/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGenerateAndParseToken(t *testing.T) {
	secret := []byte("test-secret")
	user := models.User{ID: 7, Email: "ann@example.com", Role: models.RoleStaff}

	token, err := GenerateToken(secret, time.Hour, user)
	require.NoError(t, err)

	claims, err := ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, models.Principal{ID: 7, Email: "ann@example.com", Role: models.RoleStaff}, claims.Principal())

	_, err = ParseToken([]byte("other-secret"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := GenerateToken(secret, -time.Minute, user)
	require.NoError(t, err)
	_, err = ParseToken(secret, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRespondAppError(t *testing.T) {
	cases := []struct {
		err     error
		code    int
		message string
	}{
		{apperror.NotFound("table T99 not found"), http.StatusNotFound, "table T99 not found"},
		{apperror.New(apperror.ErrSlotConflict, "slot taken"), http.StatusConflict, "slot taken"},
		{errors.New("db exploded"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		RespondAppError(c, tc.err)

		assert.Equal(t, tc.code, w.Code)
		var body JSONResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Status)
		assert.Equal(t, tc.message, body.Message)
	}
}

func TestFormatValidationError(t *testing.T) {
	type payload struct {
		ReservationTime string `json:"reservation_time" binding:"required,hhmm"`
		ReservationDate string `json:"reservation_date" binding:"required,ymd"`
		PartySize       int    `json:"party_size" binding:"gte=1"`
	}

	err := Validator().Struct(payload{ReservationTime: "25:00", ReservationDate: "2024-13-01"})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	msgs := FormatValidationError(verrs)
	assert.Equal(t, "must be a time in HH:MM format", msgs["reservation_time"])
	assert.Equal(t, "must be a date in YYYY-MM-DD format", msgs["reservation_date"])
	assert.Equal(t, "must be greater than or equal to 1", msgs["party_size"])
}

func TestTimeAndDateFormats(t *testing.T) {
	assert.True(t, IsValidTime("09:30"))
	assert.True(t, IsValidTime("23:59"))
	assert.False(t, IsValidTime("9:30"))
	assert.False(t, IsValidTime("24:00"))

	assert.True(t, IsValidDate("2024-02-29"))
	assert.False(t, IsValidDate("2023-02-29"))
	assert.False(t, IsValidDate("01/02/2024"))

	assert.True(t, IsValidEmail("a@b.io"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.True(t, IsValidEmail(" Bob@Example.com "))

	assert.True(t, IsValidUsername(" ann "))
	assert.False(t, IsValidUsername(" ab "))
	assert.False(t, IsValidUsername(strings.Repeat("a", 31)))

	assert.True(t, IsValidTableNumber(" t01 "))
	assert.False(t, IsValidTableNumber("!!"))
}

func TestAccountTags(t *testing.T) {
	type account struct {
		Username string `json:"username" binding:"required,username"`
		Email    string `json:"email" binding:"required,useremail"`
	}

	assert.NoError(t, ValidateStruct(account{Username: " ann ", Email: " Ann@Example.com "}))

	err := ValidateStruct(account{Username: " ab ", Email: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username must be 3 to 30 characters")
	assert.Contains(t, err.Error(), "email must be a valid email address")
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger("debug", "json"))
	assert.Equal(t, "debug", InfoLogger.GetLevel().String())
	assert.Equal(t, "warning", ErrorLogger.GetLevel().String())

	require.NoError(t, InitLogger("error", "text"))
	assert.Equal(t, "error", ErrorLogger.GetLevel().String())

	require.NoError(t, InitLogger("info", "text"))

	assert.Error(t, InitLogger("loud", "text"))
}

func TestValidateStruct(t *testing.T) {
	type payload struct {
		Email     string `json:"email" binding:"required,email"`
		PartySize int    `json:"party_size" binding:"gte=1"`
	}

	assert.NoError(t, ValidateStruct(payload{Email: "a@b.io", PartySize: 2}))

	err := ValidateStruct(payload{Email: "nope"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "email must be a valid email address; party_size must be greater than or equal to 1", err.Error())
}
