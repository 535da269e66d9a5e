package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

const defaultAnalyticsWindow = 30 * 24 * time.Hour

type AdminController struct {
	Reports *services.Reports
	now     func() time.Time
}

func NewAdminController(reports *services.Reports) *AdminController {
	return &AdminController{Reports: reports, now: time.Now}
}

// GetDashboardStats -> counters for today's floor
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	today := ac.now().Format(models.DateLayout)
	stats, err := ac.Reports.DashboardStats(c.Request.Context(), today, p)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}

// GetAnalytics -> ?from=YYYY-MM-DD&to=YYYY-MM-DD, last 30 days by default
func (ac *AdminController) GetAnalytics(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	now := ac.now()
	from := c.DefaultQuery("from", now.Add(-defaultAnalyticsWindow).Format(models.DateLayout))
	to := c.DefaultQuery("to", now.Format(models.DateLayout))

	analytics, err := ac.Reports.Analytics(c.Request.Context(), from, to, p)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Analytics retrieved successfully", analytics)
}
