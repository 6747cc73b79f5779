package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	httpapi "github.com/sakura-events/sakura-backend/internal/api/http"
	projectdomain "github.com/sakura-events/sakura-backend/internal/projects/domain"
	"github.com/sakura-events/sakura-backend/internal/timers/domain"
	"github.com/sakura-events/sakura-backend/internal/timers/service"
)

func (h *Handler) start(c *gin.Context) {
	owner, ok := httpapi.Caller(c)
	if !ok {
		return
	}

	var req startReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadRequest(c)
		return
	}
	if strings.TrimSpace(req.ProjectID) == "" {
		httpapi.Error(c, &domain.ValidationError{Field: "projectId", Message: "projectId is required"})
		return
	}
	if req.UserID != "" && req.UserID != owner.ID {
		httpapi.Error(c, projectdomain.ErrForbidden)
		return
	}

	s, err := h.svc.Start(c.Request.Context(), owner, req.ProjectID)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.Success(c, http.StatusOK, s)
}

func (h *Handler) stop(c *gin.Context) {
	owner, ok := httpapi.Caller(c)
	if !ok {
		return
	}

	var req stopReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadRequest(c)
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		httpapi.Error(c, &domain.ValidationError{Field: "id", Message: "id is required"})
		return
	}
	hours, err := req.Duration.Float64()
	if err != nil {
		httpapi.Error(c, &domain.ValidationError{Field: "duration", Message: "duration must be a number of hours"})
		return
	}

	res, err := h.svc.Stop(c.Request.Context(), owner, service.StopInput{
		ID:       req.ID,
		EndTime:  req.EndTime,
		Duration: hours,
	})
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.Success(c, http.StatusOK, res)
}

func (h *Handler) active(c *gin.Context) {
	owner, ok := httpapi.Caller(c)
	if !ok {
		return
	}

	a, err := h.svc.Active(c.Request.Context(), owner)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.Success(c, http.StatusOK, a)
}

func (h *Handler) listByProject(c *gin.Context) {
	owner, ok := httpapi.Caller(c)
	if !ok {
		return
	}

	items, err := h.svc.ListByProject(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	httpapi.Success(c, http.StatusOK, items)
}
