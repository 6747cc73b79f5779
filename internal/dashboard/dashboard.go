package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	projectdomain "github.com/sakura-events/sakura-backend/internal/projects/domain"
	timerdomain "github.com/sakura-events/sakura-backend/internal/timers/domain"
)

// API is implemented by Client.
type API interface {
	TimerAPI
	Session(ctx context.Context) (*Me, error)
	ListProjects(ctx context.Context) ([]projectdomain.Project, error)
	CreateProject(ctx context.Context, in projectdomain.CreateInput) (*projectdomain.Project, error)
	UpdateProject(ctx context.Context, id string, patch projectdomain.Patch) (*projectdomain.Project, error)
	DeleteProject(ctx context.Context, id string) error
	ActiveTimer(ctx context.Context) (*timerdomain.ActiveTimer, error)
}

// Dashboard drives the Machine from API responses and keeps the local timer record in step.
type Dashboard struct {
	api   API
	store *TimerStore
	clock clock.Clock

	Machine  *Machine
	Me       *Me
	Projects []projectdomain.Project
	Selected *projectdomain.Project
	Running  *RunningTimer
}

func New(api API, store *TimerStore, clk clock.Clock) *Dashboard {
	if clk == nil {
		clk = clock.New()
	}
	return &Dashboard{api: api, store: store, clock: clk, Machine: NewMachine()}
}

// SignIn resolves the identity behind the token and loads the project list.
func (d *Dashboard) SignIn(ctx context.Context) error {
	me, err := d.api.Session(ctx)
	if err != nil {
		d.Machine.Fail(err)
		return err
	}
	d.Me = me
	if err := d.Machine.Fire(EventSignedIn); err != nil {
		return err
	}
	return d.Load(ctx)
}

// Load refreshes projects and resumes a running timer. The server's view of
// the running timer wins over the local record; the local record is only
// used when the server cannot be asked.
func (d *Dashboard) Load(ctx context.Context) error {
	projects, err := d.api.ListProjects(ctx)
	if err != nil {
		d.Machine.Fail(err)
		if d.Machine.State() == StateLoading {
			_ = d.Machine.Fire(EventLoadFailed)
		}
		return err
	}
	d.Projects = projects
	d.Selected = nil

	d.Running = d.resume(ctx)
	if d.Running != nil {
		d.Selected = d.project(d.Running.ProjectID)
		return d.Machine.Fire(EventResumed)
	}
	return d.Machine.Fire(EventLoaded)
}

func (d *Dashboard) resume(ctx context.Context) *RunningTimer {
	local, _ := d.store.Load(d.Me.ID)

	active, err := d.api.ActiveTimer(ctx)
	if err != nil {
		return local
	}
	if active == nil {
		if local != nil {
			_ = d.store.Clear()
		}
		return nil
	}

	rt := RunningTimer{
		UserID:         d.Me.ID,
		ProjectID:      active.ProjectID,
		SessionID:      active.SessionID,
		StartTimestamp: active.StartTime,
	}
	if local == nil || *local != rt {
		_ = d.store.Save(rt)
	}
	return &rt
}

func (d *Dashboard) project(id string) *projectdomain.Project {
	for i := range d.Projects {
		if d.Projects[i].ID == id {
			return &d.Projects[i]
		}
	}
	return nil
}

func (d *Dashboard) Create(ctx context.Context, in projectdomain.CreateInput) (*projectdomain.Project, error) {
	if err := d.Machine.Fire(EventOpenCreate); err != nil {
		return nil, err
	}
	return d.save(ctx, func() (*projectdomain.Project, error) { return d.api.CreateProject(ctx, in) })
}

func (d *Dashboard) Edit(ctx context.Context, id string, patch projectdomain.Patch) (*projectdomain.Project, error) {
	if err := d.Machine.Fire(EventOpenEdit); err != nil {
		return nil, err
	}
	return d.save(ctx, func() (*projectdomain.Project, error) { return d.api.UpdateProject(ctx, id, patch) })
}

// save runs a form submission. A rejected form closes with the error on the banner.
func (d *Dashboard) save(ctx context.Context, submit func() (*projectdomain.Project, error)) (*projectdomain.Project, error) {
	p, err := submit()
	if err != nil {
		d.Machine.Fail(err)
		if d.Machine.State() == StateFormOpen {
			_ = d.Machine.Fire(EventCancelForm)
		}
		return nil, err
	}
	if err := d.Machine.Fire(EventSaved); err != nil {
		return p, err
	}
	return p, d.Load(ctx)
}

func (d *Dashboard) Delete(ctx context.Context, id string) error {
	if !d.Machine.Can(EventSaved) {
		return fmt.Errorf("%w: delete on %s", ErrInvalidTransition, d.Machine.State())
	}
	if err := d.api.DeleteProject(ctx, id); err != nil {
		d.Machine.Fail(err)
		return err
	}
	if err := d.Machine.Fire(EventSaved); err != nil {
		return err
	}
	return d.Load(ctx)
}

func (d *Dashboard) Select(projectID string) error {
	p := d.project(projectID)
	if p == nil {
		return fmt.Errorf("project %s not found", projectID)
	}
	if err := d.Machine.Fire(EventSelectProject); err != nil {
		return err
	}
	d.Selected = p
	return nil
}

// Start starts the timer on the selected project.
func (d *Dashboard) Start(ctx context.Context) (*RunningTimer, error) {
	if d.Machine.State() != StateTimerIdle || d.Selected == nil {
		return nil, fmt.Errorf("%w: start on %s", ErrInvalidTransition, d.Machine.State())
	}
	rt, err := StartTimer(ctx, d.api, d.store, d.Me.ID, d.Selected.ID)
	if rt == nil {
		d.Machine.Fail(err)
		return nil, err
	}
	d.Running = rt
	if fireErr := d.Machine.Fire(EventTimerStarted); fireErr != nil {
		return rt, fireErr
	}
	return rt, err
}

// Stop stops the running timer now and reloads the totals.
func (d *Dashboard) Stop(ctx context.Context) (*timerdomain.StopResult, error) {
	return d.StopAt(ctx, d.clock.Now())
}

// StopAt stops the running timer with end as its end time, e.g. the instant
// a view showed when the user pressed stop.
func (d *Dashboard) StopAt(ctx context.Context, end time.Time) (*timerdomain.StopResult, error) {
	if d.Machine.State() != StateTimerRunning || d.Running == nil {
		return nil, fmt.Errorf("%w: stop on %s", ErrInvalidTransition, d.Machine.State())
	}
	res, err := StopTimer(ctx, d.api, d.store, *d.Running, end)
	if err != nil {
		d.Machine.Fail(err)
		if !sessionGone(err) {
			return nil, err
		}
		// Closed elsewhere, e.g. by another client or the reaper.
		banner := d.Machine.Banner
		d.Running = nil
		_ = d.Machine.Fire(EventTimerStopped)
		_ = d.Load(ctx)
		d.Machine.Banner = banner
		return nil, err
	}
	d.Running = nil
	if err := d.Machine.Fire(EventTimerStopped); err != nil {
		return res, err
	}
	return res, d.Load(ctx)
}
