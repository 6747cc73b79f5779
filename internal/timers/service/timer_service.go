package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/sakura-events/sakura-backend/internal/auth"
	"github.com/sakura-events/sakura-backend/internal/logging"
	projectdomain "github.com/sakura-events/sakura-backend/internal/projects/domain"
	"github.com/sakura-events/sakura-backend/internal/timers/domain"
)

type SessionStore interface {
	Create(ctx context.Context, s *domain.Session) (*domain.Session, error)
	FindByID(ctx context.Context, id string) (*domain.Session, error)
	FindOpenByOwner(ctx context.Context, ownerID string) (*domain.Session, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Session, error)
	StaleOpen(ctx context.Context, cutoff time.Time) ([]domain.Session, error)
	Stop(ctx context.Context, id, ownerID string, end time.Time, hours float64) (float64, error)
	CloseAbandoned(ctx context.Context, id string, end time.Time) (bool, error)
}

// ActiveMarker guards the one-running-timer-per-owner rule.
type ActiveMarker interface {
	Reserve(ctx context.Context, ownerID string) (bool, error)
	Confirm(ctx context.Context, ownerID, sessionID string) error
	Get(ctx context.Context, ownerID string) (string, error)
	Release(ctx context.Context, ownerID, sessionID string) error
}

type ProjectFinder interface {
	FindByID(ctx context.Context, id string) (*projectdomain.Project, error)
}

// StopInput is what the client reports when it stops a timer. Duration is in hours.
type StopInput struct {
	ID       string
	EndTime  time.Time
	Duration float64
}

// TimerService starts and stops timers and folds their durations into project totals.
type TimerService struct {
	sessions   SessionStore
	active     ActiveMarker
	projects   ProjectFinder
	clock      clock.Clock
	maxSession time.Duration
}

func NewTimerService(sessions SessionStore, active ActiveMarker, projects ProjectFinder, clk clock.Clock, maxSession time.Duration) *TimerService {
	if clk == nil {
		clk = clock.New()
	}
	return &TimerService{
		sessions:   sessions,
		active:     active,
		projects:   projects,
		clock:      clk,
		maxSession: maxSession,
	}
}

// Start opens a session on an owned project. The start time is the server's clock.
func (s *TimerService) Start(ctx context.Context, owner auth.Identity, projectID string) (*domain.Session, error) {
	log := logging.NewLogger(ctx)

	if err := s.ownProject(ctx, owner, projectID); err != nil {
		return nil, err
	}

	if err := s.reserve(ctx, owner.ID); err != nil {
		return nil, err
	}

	// the database is authoritative if the marker was lost
	open, err := s.sessions.FindOpenByOwner(ctx, owner.ID)
	if err == nil && open != nil {
		err = domain.ErrTimerAlreadyRunning
	}
	if err != nil {
		s.releaseQuietly(ctx, owner.ID, "")
		return nil, err
	}

	created, err := s.sessions.Create(ctx, &domain.Session{
		OwnerID:   owner.ID,
		ProjectID: projectID,
		StartTime: s.clock.Now().UTC(),
	})
	if err != nil {
		s.releaseQuietly(ctx, owner.ID, "")
		return nil, err
	}

	if err := s.active.Confirm(ctx, owner.ID, created.ID); err != nil {
		log.LogWarn("timer.start", "could not confirm active marker", zap.Error(err))
	}

	log.LogInfo("timer.start", "timer started",
		zap.String("session_id", created.ID), zap.String("project_id", projectID))
	return created, nil
}

// Stop closes the caller's session and adds the reported duration to the project.
func (s *TimerService) Stop(ctx context.Context, owner auth.Identity, in StopInput) (*domain.StopResult, error) {
	session, err := s.sessions.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if session.OwnerID != owner.ID {
		return nil, domain.ErrForbidden
	}
	if !session.Running() {
		return nil, domain.ErrSessionClosed
	}

	end := in.EndTime.UTC()
	if err := domain.ValidateStop(session, end, in.Duration); err != nil {
		return nil, err
	}
	if end.After(s.clock.Now().Add(domain.ClockSlack)) {
		return nil, &domain.ValidationError{Field: "endTime", Message: "endTime cannot be in the future"}
	}

	total, err := s.sessions.Stop(ctx, session.ID, owner.ID, end, in.Duration)
	if err != nil {
		return nil, err
	}
	s.releaseQuietly(ctx, owner.ID, session.ID)

	logging.NewLogger(ctx).LogInfo("timer.stop", "timer stopped",
		zap.String("session_id", session.ID), zap.Float64("hours", in.Duration))

	return &domain.StopResult{
		ID:                session.ID,
		EndTime:           end,
		Duration:          in.Duration,
		ProjectTotalHours: total,
	}, nil
}

// Active returns the caller's running timer or ErrNoActiveTimer.
func (s *TimerService) Active(ctx context.Context, owner auth.Identity) (*domain.ActiveTimer, error) {
	open, err := s.sessions.FindOpenByOwner(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, domain.ErrNoActiveTimer
	}
	return &domain.ActiveTimer{SessionID: open.ID, ProjectID: open.ProjectID, StartTime: open.StartTime}, nil
}

// ListByProject returns the sessions of an owned project.
func (s *TimerService) ListByProject(ctx context.Context, owner auth.Identity, projectID string) ([]domain.Session, error) {
	if err := s.ownProject(ctx, owner, projectID); err != nil {
		return nil, err
	}
	return s.sessions.ListByProject(ctx, projectID)
}

// ReapStale closes sessions running longer than the maximum with zero
// duration, so abandoned timers never add hours. It returns how many were closed.
func (s *TimerService) ReapStale(ctx context.Context) (int, error) {
	now := s.clock.Now().UTC()
	stale, err := s.sessions.StaleOpen(ctx, now.Add(-s.maxSession))
	if err != nil {
		return 0, err
	}

	var (
		result *multierror.Error
		closed int
	)
	for _, sess := range stale {
		ok, err := s.sessions.CloseAbandoned(ctx, sess.ID, now)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("session %s: %w", sess.ID, err))
			continue
		}
		if ok {
			closed++
		}
		if err := s.active.Release(ctx, sess.OwnerID, sess.ID); err != nil {
			result = multierror.Append(result, fmt.Errorf("session %s marker: %w", sess.ID, err))
		}
	}
	return closed, result.ErrorOrNil()
}

func (s *TimerService) ownProject(ctx context.Context, owner auth.Identity, projectID string) error {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	if !p.OwnedBy(owner.ID) {
		return projectdomain.ErrForbidden
	}
	return nil
}

// reserve claims the owner's marker, clearing it first if it points at a
// session that is no longer running.
func (s *TimerService) reserve(ctx context.Context, ownerID string) error {
	ok, err := s.active.Reserve(ctx, ownerID)
	if err != nil || ok {
		return err
	}

	held, err := s.active.Get(ctx, ownerID)
	if err != nil {
		return err
	}
	if held == "" || held == domain.MarkerPending {
		return domain.ErrTimerAlreadyRunning
	}

	sess, err := s.sessions.FindByID(ctx, held)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
	case err != nil:
		return err
	case sess.Running():
		return domain.ErrTimerAlreadyRunning
	}

	if err := s.active.Release(ctx, ownerID, held); err != nil {
		return err
	}
	ok, err = s.active.Reserve(ctx, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrTimerAlreadyRunning
	}
	return nil
}

func (s *TimerService) releaseQuietly(ctx context.Context, ownerID, sessionID string) {
	if err := s.active.Release(ctx, ownerID, sessionID); err != nil {
		logging.NewLogger(ctx).LogWarn("timer.release", "could not clear active marker", zap.Error(err))
	}
}
