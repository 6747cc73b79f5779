package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sakura-events/sakura-backend/internal/auth"
	"github.com/sakura-events/sakura-backend/internal/logging"
	"github.com/sakura-events/sakura-backend/internal/projects/domain"
)

// Store is the persistence adapter for projects.
type Store interface {
	Create(ctx context.Context, p *domain.Project) (*domain.Project, error)
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	FindByOwner(ctx context.Context, ownerID string) ([]domain.Project, error)
	Update(ctx context.Context, id string, p *domain.Project) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
}

// ProjectService handles project-related business logic. Every single-record
// operation loads the project, checks ownership, then writes.
type ProjectService struct {
	store Store
}

func NewProjectService(store Store) *ProjectService {
	return &ProjectService{store: store}
}

// List returns the owner's projects, newest first.
func (s *ProjectService) List(ctx context.Context, owner auth.Identity) ([]domain.Project, error) {
	return s.store.FindByOwner(ctx, owner.ID)
}

// Create validates and stores a new pending project, then re-reads it.
func (s *ProjectService) Create(ctx context.Context, owner auth.Identity, in domain.CreateInput) (*domain.Project, error) {
	p := domain.Project{
		Title:            in.Title,
		Description:      in.Description,
		RepositoryURL:    in.RepositoryURL,
		LiveURL:          in.LiveURL,
		Technologies:     in.Technologies,
		OwnerID:          owner.ID,
		OwnerDisplayName: owner.DisplayName,
		Status:           domain.StatusPending,
	}
	domain.Normalize(&p)
	if err := domain.Validate(&p); err != nil {
		return nil, err
	}

	created, err := s.store.Create(ctx, &p)
	if err != nil {
		return nil, err
	}

	saved, err := s.verify(ctx, created.ID, owner)
	if err != nil {
		return nil, err
	}

	logging.NewLogger(ctx).LogInfo("project.create", "project created",
		zap.String("project_id", saved.ID), zap.String("owner_id", owner.ID))
	return saved, nil
}

func (s *ProjectService) Get(ctx context.Context, owner auth.Identity, id string) (*domain.Project, error) {
	return s.owned(ctx, owner, id)
}

// Update merges patch into the stored project. Owner, status and hours never change.
func (s *ProjectService) Update(ctx context.Context, owner auth.Identity, id string, patch domain.Patch) (*domain.Project, error) {
	current, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	next := patch.Apply(*current)
	domain.Normalize(&next)
	if err := domain.Validate(&next); err != nil {
		return nil, err
	}

	if _, err := s.store.Update(ctx, id, &next); err != nil {
		return nil, err
	}

	saved, err := s.verify(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	logging.NewLogger(ctx).LogInfo("project.update", "project updated", zap.String("project_id", id))
	return saved, nil
}

func (s *ProjectService) Delete(ctx context.Context, owner auth.Identity, id string) error {
	if _, err := s.owned(ctx, owner, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	logging.NewLogger(ctx).LogInfo("project.delete", "project deleted", zap.String("project_id", id))
	return nil
}

func (s *ProjectService) owned(ctx context.Context, owner auth.Identity, id string) (*domain.Project, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.OwnedBy(owner.ID) {
		logging.NewLogger(ctx).LogWarn("project.access", "ownership check failed",
			zap.String("project_id", id), zap.String("caller_id", owner.ID))
		return nil, domain.ErrForbidden
	}
	return p, nil
}

// verify re-reads a written project so the response reflects what was stored.
func (s *ProjectService) verify(ctx context.Context, id string, owner auth.Identity) (*domain.Project, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("verify project %s: %w", id, err)
	}
	if !p.OwnedBy(owner.ID) {
		return nil, fmt.Errorf("verify project %s: stored owner mismatch", id)
	}
	return p, nil
}
