package middleware

import (
	"github.com/gin-gonic/gin"

	"go-gin-gorm-auth/internal/domain"
)

const KeyActor = "actor"

func SetActor(c *gin.Context, a domain.Actor) { c.Set(KeyActor, a) }

func ActorFrom(c *gin.Context) (domain.Actor, bool) {
	v, ok := c.Get(KeyActor)
	if !ok {
		return domain.Actor{}, false
	}
	a, ok := v.(domain.Actor)
	return a, ok
}
