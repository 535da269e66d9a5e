package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-reservation/apperror"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// RespondAppError picks the status code from the error kind. Internal errors
// are logged and answered with a generic message.
func RespondAppError(c *gin.Context, err error) {
	code := apperror.StatusCode(err)
	if code == http.StatusInternalServerError {
		ErrorLogger.WithFields(logrus.Fields{
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(RequestIDKey),
		}).WithError(err).Error("request failed")
		RespondError(c, code, errors.New("internal server error"))
		return
	}
	RespondError(c, code, err)
}

// RespondBindingError answers a failed ShouldBind* call with 400 and, for
// validator errors, the per-field messages as data.
func RespondBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		RespondJSON(c, http.StatusBadRequest, "validation failed", FormatValidationError(verrs))
		return
	}
	RespondError(c, http.StatusBadRequest, err)
}
