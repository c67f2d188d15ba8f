package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// ActorHeader carries the ID of the user performing the request. The API
	// sits behind a gateway that authenticates callers and sets it.
	ActorHeader = "X-Actor-ID"
	// IdempotencyHeader may carry a payment reference instead of the body
	IdempotencyHeader = "Idempotency-Key"

	actorIDKey = "actorID"
)

// Actor reads the acting user from ActorHeader when present
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(ActorHeader))
		if raw == "" {
			c.Next()
			return
		}

		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": ActorHeader + " must be a positive integer",
			})
			return
		}

		c.Set(actorIDKey, uint(id))
		c.Next()
	}
}

// RequireActor rejects requests that did not identify their actor
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetActorID(c) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": ActorHeader + " header is required",
			})
			return
		}
		c.Next()
	}
}

// GetActorID extracts the actor ID from the Gin context
func GetActorID(c *gin.Context) uint {
	actorID, exists := c.Get(actorIDKey)
	if !exists {
		return 0
	}
	return actorID.(uint)
}
