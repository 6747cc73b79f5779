package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakura-events/sakura-backend/internal/storage/postgres"
)

func serveTables(t *testing.T, check TableCheckFunc) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewStoreHandler(check).RegisterRoutes(r.Group("/api/store"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/store/tables", nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestStoreTables_AllPresent(t *testing.T) {
	w, body := serveTables(t, func(context.Context) ([]postgres.TableStatus, error) {
		return []postgres.TableStatus{{Name: "projects", Exists: true}}, nil
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "All required tables are present", body["message"])
}

func TestStoreTables_Missing(t *testing.T) {
	w, body := serveTables(t, func(context.Context) ([]postgres.TableStatus, error) {
		return []postgres.TableStatus{{Name: "projects"}}, errors.New("table projects is missing")
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "projects is missing")
}
