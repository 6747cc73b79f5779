package http

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sakura-events/sakura-backend/internal/auth"
	"github.com/sakura-events/sakura-backend/internal/timers/domain"
	"github.com/sakura-events/sakura-backend/internal/timers/service"
)

// TimerService is implemented by service.TimerService.
type TimerService interface {
	Start(ctx context.Context, owner auth.Identity, projectID string) (*domain.Session, error)
	Stop(ctx context.Context, owner auth.Identity, in service.StopInput) (*domain.StopResult, error)
	Active(ctx context.Context, owner auth.Identity) (*domain.ActiveTimer, error)
	ListByProject(ctx context.Context, owner auth.Identity, projectID string) ([]domain.Session, error)
}

type Handler struct {
	svc TimerService
}

func New(svc TimerService) *Handler {
	return &Handler{svc: svc}
}

type startReq struct {
	ProjectID string `json:"projectId"`
	UserID    string `json:"userId"`
}

// stopReq carries the duration as a raw number so non-numeric values are a 400.
type stopReq struct {
	ID       string      `json:"id"`
	EndTime  time.Time   `json:"endTime"`
	Duration json.Number `json:"duration"`
}
