package http

import (
	"context"

	"github.com/sakura-events/sakura-backend/internal/auth"
	"github.com/sakura-events/sakura-backend/internal/projects/domain"
)

// ProjectService is implemented by service.ProjectService.
type ProjectService interface {
	List(ctx context.Context, owner auth.Identity) ([]domain.Project, error)
	Create(ctx context.Context, owner auth.Identity, in domain.CreateInput) (*domain.Project, error)
	Get(ctx context.Context, owner auth.Identity, id string) (*domain.Project, error)
	Update(ctx context.Context, owner auth.Identity, id string, patch domain.Patch) (*domain.Project, error)
	Delete(ctx context.Context, owner auth.Identity, id string) error
}

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc ProjectService
}

func New(svc ProjectService) *Handler {
	return &Handler{svc: svc}
}

// submitReq is the legacy submission form, where the title is sent as name.
type submitReq struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Technologies  []string `json:"technologies"`
	RepositoryURL string   `json:"repositoryUrl"`
	LiveURL       string   `json:"liveUrl"`
	UserID        string   `json:"userId"`
}
