package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservation/config"
	"github.com/yeremiapane/restaurant-reservation/controllers"
	"github.com/yeremiapane/restaurant-reservation/hub"
	"github.com/yeremiapane/restaurant-reservation/middlewares"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"gorm.io/gorm"
)

// SetupRouter builds the HTTP surface. A nil floor hub gets a local-only one.
func SetupRouter(db *gorm.DB, cfg *config.Config, floor *hub.Hub) *gin.Engine {
	if floor == nil {
		floor = hub.New(nil)
	}
	utils.RegisterValidators()

	r := gin.New()
	r.Use(middlewares.RequestID())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders(cfg.IsProduction()))
	r.Use(middlewares.CORSMiddlewares(cfg.AllowedOrigins))
	r.Use(middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).RateLimit())

	// Services
	users := services.NewUserDirectory(db)
	resolver := services.NewAvailabilityResolver(db)
	synchronizer := services.NewStatusSynchronizer(floor)
	tables := services.NewTableRegistry(db, floor)
	ledger := services.NewReservationLedger(db, resolver, synchronizer, floor)
	reports := services.NewReports(db)

	// Inisialisasi controller
	secret := []byte(cfg.JWTSecret)
	userCtrl := controllers.NewUserController(users, secret, cfg.JWTTTL)
	tableCtrl := controllers.NewTableController(tables, resolver)
	reservationCtrl := controllers.NewReservationController(ledger)
	staffCtrl := controllers.NewStaffController(users)
	adminCtrl := controllers.NewAdminController(reports)
	floorCtrl := controllers.NewFloorController(floor, cfg.AllowedOrigins)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := r.Group("/api")
	api.GET("/health", health(db, floor))

	authPublic := api.Group("/auth")
	authPublic.Use(middlewares.NewStrictRateLimiter().RateLimit())
	{
		authPublic.POST("/register", userCtrl.Register)
		authPublic.POST("/login", userCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := api.Group("")
	auth.Use(middlewares.AuthMiddleware(secret))

	staffOnly := middlewares.RequireRoles(models.RoleStaff, models.RoleAdmin)
	adminOnly := middlewares.RequireRoles(models.RoleAdmin)

	auth.GET("/auth/me", userCtrl.GetProfile)

	// TABLES
	auth.GET("/tables", tableCtrl.GetAllTables)
	auth.GET("/tables/available", tableCtrl.GetAvailableTables)
	auth.GET("/tables/:id", tableCtrl.GetTable)
	auth.POST("/tables", adminOnly, tableCtrl.CreateTable)
	auth.PUT("/tables/:id", adminOnly, tableCtrl.UpdateTable)
	auth.PUT("/tables/number/:tableNumber", adminOnly, tableCtrl.UpdateTableByNumber)
	auth.DELETE("/tables/:id", adminOnly, tableCtrl.DeleteTable)

	// RESERVATIONS
	auth.GET("/reservations", reservationCtrl.List)
	auth.GET("/reservations/today", staffOnly, reservationCtrl.Today)
	auth.GET("/reservations/upcoming", reservationCtrl.Upcoming)
	auth.GET("/reservations/:id", reservationCtrl.Get)
	auth.POST("/reservations", reservationCtrl.Create)
	auth.PUT("/reservations/:id", staffOnly, reservationCtrl.UpdateDetails)
	auth.PUT("/reservations/:id/status", staffOnly, reservationCtrl.UpdateStatus)
	auth.PUT("/reservations/:id/cancel", reservationCtrl.Cancel)
	auth.DELETE("/reservations/:id", adminOnly, reservationCtrl.Delete)

	// STAFF (admin)
	staff := auth.Group("/staff", adminOnly)
	{
		staff.GET("", staffCtrl.GetAllStaff)
		staff.POST("", staffCtrl.CreateStaff)
		staff.PUT("/:id", staffCtrl.UpdateStaff)
		staff.DELETE("/:id", staffCtrl.DeleteStaff)
	}

	// DASHBOARD
	auth.GET("/dashboard/stats", staffOnly, adminCtrl.GetDashboardStats)
	auth.GET("/analytics", adminOnly, adminCtrl.GetAnalytics)

	// Floor websocket, the token travels as ?token=
	auth.GET("/ws/floor", staffOnly, floorCtrl.FloorHandler)

	return r
}

func health(db *gorm.DB, floor *hub.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			utils.ErrorLogger.WithError(err).Error("health check failed")
			utils.RespondJSON(c, http.StatusServiceUnavailable, "database unavailable", gin.H{"database": "down"})
			return
		}
		utils.RespondJSON(c, http.StatusOK, "OK", gin.H{"database": "up", "floor_clients": floor.ClientCount()})
	}
}
