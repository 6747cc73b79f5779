package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sakura-events/sakura-backend/internal/logging"
	"github.com/sakura-events/sakura-backend/internal/storage/postgres"
)

type TableCheckFunc func(ctx context.Context) ([]postgres.TableStatus, error)

// StoreHandler reports whether the schema the API depends on is in place.
type StoreHandler struct {
	check TableCheckFunc
}

func NewStoreHandler(check TableCheckFunc) *StoreHandler {
	return &StoreHandler{check: check}
}

func (h *StoreHandler) Tables(c *gin.Context) {
	tables, err := h.check(c.Request.Context())
	if err != nil {
		logging.NewLogger(c.Request.Context()).LogError("store.tables", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
			"data":    tables,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "All required tables are present",
		"data":    tables,
	})
}

func (h *StoreHandler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/tables", h.Tables)
}
