package auth

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sakura-events/sakura-backend/internal/users"
)

// UserRecorder stores the profile of an identity seen by the API.
type UserRecorder interface {
	EnsureUser(ctx context.Context, u users.UpsertUser) (string, error)
}

// SyncUser records each identity in the users table the first time this
// process sees it. Failures are logged and never block the request.
func SyncUser(repo UserRecorder, log *zap.Logger) gin.HandlerFunc {
	var seen sync.Map

	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			c.Next()
			return
		}

		if _, done := seen.Load(id.ID); !done {
			_, err := repo.EnsureUser(c.Request.Context(), users.UpsertUser{
				ExternalID:  id.ID,
				Email:       id.Email,
				DisplayName: id.DisplayName,
			})
			if err != nil {
				log.Warn("ensure user", zap.String("user_id", id.ID), zap.Error(err))
			} else {
				seen.Store(id.ID, struct{}{})
			}
		}

		c.Next()
	}
}
