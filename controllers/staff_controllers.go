package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

type StaffController struct {
	Users *services.UserDirectory
}

func NewStaffController(users *services.UserDirectory) *StaffController {
	return &StaffController{Users: users}
}

func (sc *StaffController) GetAllStaff(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	staff, err := sc.Users.ListStaff(c.Request.Context(), p)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of staff", staff)
}

func (sc *StaffController) CreateStaff(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req services.StaffInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	user, err := sc.Users.CreateStaff(c.Request.Context(), req, p)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Staff created successfully", user)
}

func (sc *StaffController) UpdateStaff(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var patch services.StaffPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	user, err := sc.Users.UpdateStaff(c.Request.Context(), id, patch, p)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Staff updated", user)
}

func (sc *StaffController) DeleteStaff(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := sc.Users.DeleteStaff(c.Request.Context(), id, p); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Staff deleted successfully", nil)
}
