package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-reservation/hub"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

type FloorController struct {
	Hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewFloorController accepts websocket upgrades from the given origins. An
// empty list allows any origin.
func NewFloorController(h *hub.Hub, origins []string) *FloorController {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &FloorController{
		Hub: h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
		},
	}
}

// FloorHandler -> websocket stream of table and reservation events
func (fc *FloorController) FloorHandler(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	ws, err := fc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	utils.InfoLogger.WithField("user_id", p.ID).Info("floor client connected")
	fc.Hub.Serve(ws, p.Role)
}
