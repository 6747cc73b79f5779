package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/sakura-events/sakura-backend/internal/auth"
)

type staticResolver struct {
	id auth.Identity
	ok bool
}

func (s staticResolver) Resolve(*http.Request) (auth.Identity, bool) { return s.id, s.ok }

func TestRequireIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("rejects before handler", func(t *testing.T) {
		reached := false
		r := gin.New()
		r.Use(RequireIdentity(staticResolver{}))
		r.GET("/x", func(c *gin.Context) { reached = true })

		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"success":false,"error":"Unauthorized"}`, rr.Body.String())
		assert.False(t, reached)
	})

	t.Run("stores identity", func(t *testing.T) {
		var got auth.Identity
		r := gin.New()
		r.Use(RequireIdentity(staticResolver{id: auth.NewIdentity("U1", "Ada", ""), ok: true}))
		r.GET("/x", func(c *gin.Context) {
			got, _ = auth.IdentityFrom(c)
			c.Status(http.StatusOK)
		})

		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "U1", got.ID)
	})
}
