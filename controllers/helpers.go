package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservation/apperror"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

// principal fetches the authenticated principal or answers 401.
func principal(c *gin.Context) (models.Principal, bool) {
	p, ok := utils.GetPrincipal(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
		return models.Principal{}, false
	}
	return p, true
}

// paramID parses a positive numeric path parameter or answers 400.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondAppError(c, apperror.Validation("invalid %s %q", name, c.Param(name)))
		return 0, false
	}
	return uint(id), true
}
