package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

type ReservationController struct {
	Ledger *services.ReservationLedger
	now    func() time.Time
}

func NewReservationController(ledger *services.ReservationLedger) *ReservationController {
	return &ReservationController{Ledger: ledger, now: time.Now}
}

func (rc *ReservationController) today() string {
	return rc.now().Format(models.DateLayout)
}

// List -> customers only ever see their own bookings
func (rc *ReservationController) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var filter services.ReservationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	reservations, err := rc.Ledger.List(c.Request.Context(), filter, p)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}

func (rc *ReservationController) Today(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	reservations, err := rc.Ledger.Today(c.Request.Context(), rc.today(), p)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Today's reservations", reservations)
}

func (rc *ReservationController) Upcoming(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	reservations, err := rc.Ledger.Upcoming(c.Request.Context(), rc.today(), p)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Upcoming reservations", reservations)
}

func (rc *ReservationController) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	reservation, err := rc.Ledger.Get(c.Request.Context(), id, p)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation detail", reservation)
}

// Create -> books a table; the response carries the updated table snapshot
func (rc *ReservationController) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req services.ReservationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	reservation, err := rc.Ledger.Create(c.Request.Context(), req, p)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Reservation created successfully", reservation)
}

func (rc *ReservationController) UpdateDetails(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var patch services.ReservationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	reservation, err := rc.Ledger.UpdateDetails(c.Request.Context(), id, patch, p)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation updated", reservation)
}

func (rc *ReservationController) UpdateStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	reservation, err := rc.Ledger.UpdateStatus(c.Request.Context(), id, req.Status, p)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation status updated", reservation)
}

func (rc *ReservationController) Cancel(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	reservation, err := rc.Ledger.Cancel(c.Request.Context(), id, p)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", reservation)
}

func (rc *ReservationController) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := rc.Ledger.Delete(c.Request.Context(), id, p); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation deleted successfully", nil)
}
