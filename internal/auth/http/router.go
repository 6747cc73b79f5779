package http

import "github.com/gin-gonic/gin"

// Register attaches auth routes. requireIdentity guards the session endpoint.
func (h *Handler) Register(rg *gin.RouterGroup, requireIdentity gin.HandlerFunc) {
	if h.SlackEnabled() {
		rg.GET("/slack/login", h.SlackLogin)
		rg.GET("/slack/callback", h.SlackCallback)
	}
	rg.GET("/session", requireIdentity, h.Session)
	rg.POST("/logout", h.Logout)
}
