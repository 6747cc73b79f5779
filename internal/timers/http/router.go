package http

import "github.com/gin-gonic/gin"

// Register attaches timer routes under the projects group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/sessions", h.start)
	rg.PUT("/sessions", h.stop)
	rg.GET("/sessions/active", h.active)
	rg.GET("/:id/sessions", h.listByProject)
}
