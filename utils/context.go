package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservation/models"
)

const (
	PrincipalKey = "principal"
	RequestIDKey = "request_id"
)

func SetPrincipal(c *gin.Context, p models.Principal) {
	c.Set(PrincipalKey, p)
	c.Set("user_id", p.ID)
	c.Set("role", p.Role)
}

func GetPrincipal(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}
