package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/sakura-events/sakura-backend/internal/users"
)

type recordingUsers struct {
	got  []users.UpsertUser
	fail bool
}

func (r *recordingUsers) EnsureUser(_ context.Context, u users.UpsertUser) (string, error) {
	r.got = append(r.got, u)
	if r.fail {
		return "", errors.New("db down")
	}
	return "row-" + u.ExternalID, nil
}

func TestSyncUser_RecordsOncePerIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &recordingUsers{}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		SetIdentity(c, NewIdentity(c.GetHeader("X-Test-User"), "Ada", ""))
		c.Next()
	})
	r.Use(SyncUser(repo, zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, who := range []string{"U1", "U1", "U2"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Test-User", who)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	if assert.Len(t, repo.got, 2) {
		assert.Equal(t, "U1", repo.got[0].ExternalID)
		assert.Equal(t, "Ada", repo.got[0].DisplayName)
		assert.Equal(t, "U2", repo.got[1].ExternalID)
	}
}

func TestSyncUser_FailureDoesNotBlock(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &recordingUsers{fail: true}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		SetIdentity(c, NewIdentity("U1", "", ""))
		c.Next()
	})
	r.Use(SyncUser(repo, zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
	// retried because the first attempt failed
	assert.Len(t, repo.got, 2)
}
