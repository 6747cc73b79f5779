package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	httpapi "github.com/sakura-events/sakura-backend/internal/api/http"
	"github.com/sakura-events/sakura-backend/internal/auth"
	"github.com/sakura-events/sakura-backend/internal/projects/domain"
)

func (h *Handler) list(c *gin.Context) {
	owner, ok := httpapi.Caller(c)
	if !ok {
		return
	}
	if !sameUser(c.Query("userId"), owner) {
		httpapi.Error(c, domain.ErrForbidden)
		return
	}

	items, err := h.svc.List(c.Request.Context(), owner)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.Success(c, http.StatusOK, items)
}

func (h *Handler) create(c *gin.Context) {
	owner, ok := httpapi.Caller(c)
	if !ok {
		return
	}

	var req domain.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadRequest(c)
		return
	}

	p, err := h.svc.Create(c.Request.Context(), owner, req)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.Success(c, http.StatusCreated, p)
}

func (h *Handler) submit(c *gin.Context) {
	owner, ok := httpapi.Caller(c)
	if !ok {
		return
	}

	var req submitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadRequest(c)
		return
	}
	if !sameUser(req.UserID, owner) {
		httpapi.Error(c, domain.ErrForbidden)
		return
	}

	p, err := h.svc.Create(c.Request.Context(), owner, domain.CreateInput{
		Title:         req.Name,
		Description:   req.Description,
		RepositoryURL: req.RepositoryURL,
		LiveURL:       req.LiveURL,
		Technologies:  req.Technologies,
	})
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.Success(c, http.StatusCreated, p)
}

func (h *Handler) get(c *gin.Context) {
	owner, ok := httpapi.Caller(c)
	if !ok {
		return
	}

	p, err := h.svc.Get(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.Success(c, http.StatusOK, p)
}

func (h *Handler) update(c *gin.Context) {
	owner, ok := httpapi.Caller(c)
	if !ok {
		return
	}

	// 404 and 403 take precedence over a malformed body.
	id := c.Param("id")
	if _, err := h.svc.Get(c.Request.Context(), owner, id); err != nil {
		httpapi.Error(c, err)
		return
	}

	var patch domain.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		httpapi.BadRequest(c)
		return
	}

	p, err := h.svc.Update(c.Request.Context(), owner, id, patch)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.Success(c, http.StatusOK, p)
}

func (h *Handler) delete(c *gin.Context) {
	owner, ok := httpapi.Caller(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), owner, c.Param("id")); err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.Success(c, http.StatusOK, gin.H{})
}

// sameUser accepts an absent userId; a present one must name the caller.
func sameUser(userID string, owner auth.Identity) bool {
	userID = strings.TrimSpace(userID)
	return userID == "" || userID == owner.ID
}
