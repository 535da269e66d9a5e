package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservation/apperror"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

type TableController struct {
	Tables   *services.TableRegistry
	Resolver *services.AvailabilityResolver
}

func NewTableController(tables *services.TableRegistry, resolver *services.AvailabilityResolver) *TableController {
	return &TableController{Tables: tables, Resolver: resolver}
}

// CreateTable -> adds a table (admin)
func (tc *TableController) CreateTable(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req services.TableInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	table, err := tc.Tables.Create(c.Request.Context(), req, p)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> lists tables, optionally filtered by status, location and min_capacity
func (tc *TableController) GetAllTables(c *gin.Context) {
	var filter services.TableFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	tables, err := tc.Tables.List(c.Request.Context(), filter)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) GetTable(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	table, err := tc.Tables.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// GetAvailableTables -> free tables for ?date=YYYY-MM-DD&time=HH:MM&partySize=N
func (tc *TableController) GetAvailableTables(c *gin.Context) {
	date := c.Query("date")
	clock := c.Query("time")
	if date == "" || clock == "" {
		utils.RespondAppError(c, apperror.Validation("date and time are required"))
		return
	}

	raw := c.DefaultQuery("partySize", c.DefaultQuery("party_size", "1"))
	partySize, err := strconv.Atoi(raw)
	if err != nil {
		utils.RespondAppError(c, apperror.Validation("partySize must be a number"))
		return
	}

	tables, err := tc.Resolver.FindAvailable(c.Request.Context(), date, clock, partySize)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Available tables", tables)
}

// UpdateTable -> direct admin edit, bypasses reservation status sync
func (tc *TableController) UpdateTable(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var patch services.TablePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	table, err := tc.Tables.Update(c.Request.Context(), id, patch, p)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

func (tc *TableController) UpdateTableByNumber(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var patch services.TablePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	table, err := tc.Tables.UpdateByNumber(c.Request.Context(), c.Param("tableNumber"), patch, p)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

func (tc *TableController) DeleteTable(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := tc.Tables.Delete(c.Request.Context(), id, p); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted successfully", nil)
}
