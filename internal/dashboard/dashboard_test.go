package dashboard

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	projectdomain "github.com/sakura-events/sakura-backend/internal/projects/domain"
	timerdomain "github.com/sakura-events/sakura-backend/internal/timers/domain"
)

type fakeAPI struct {
	clock    *clock.Mock
	projects []projectdomain.Project
	active   *timerdomain.ActiveTimer
	listErr  error
	stops    []StopRequest
}

func (f *fakeAPI) Session(context.Context) (*Me, error) {
	return &Me{ID: "U1", DisplayName: "Hana"}, nil
}

func (f *fakeAPI) ListProjects(context.Context) ([]projectdomain.Project, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]projectdomain.Project(nil), f.projects...), nil
}

func (f *fakeAPI) CreateProject(_ context.Context, in projectdomain.CreateInput) (*projectdomain.Project, error) {
	if in.Title == "" {
		return nil, &APIError{Status: http.StatusBadRequest, Message: "Title is required"}
	}
	p := projectdomain.Project{ID: "p2", Title: in.Title, Technologies: in.Technologies, Status: projectdomain.StatusPending}
	f.projects = append(f.projects, p)
	return &p, nil
}

func (f *fakeAPI) UpdateProject(_ context.Context, id string, patch projectdomain.Patch) (*projectdomain.Project, error) {
	for i := range f.projects {
		if f.projects[i].ID == id {
			f.projects[i] = patch.Apply(f.projects[i])
			return &f.projects[i], nil
		}
	}
	return nil, &APIError{Status: http.StatusNotFound, Message: "project not found"}
}

func (f *fakeAPI) DeleteProject(_ context.Context, id string) error {
	for i := range f.projects {
		if f.projects[i].ID == id {
			f.projects = append(f.projects[:i], f.projects[i+1:]...)
			return nil
		}
	}
	return &APIError{Status: http.StatusNotFound, Message: "project not found"}
}

func (f *fakeAPI) StartTimer(_ context.Context, projectID string) (*timerdomain.Session, error) {
	s := &timerdomain.Session{ID: "s1", ProjectID: projectID, StartTime: f.clock.Now()}
	f.active = &timerdomain.ActiveTimer{SessionID: s.ID, ProjectID: projectID, StartTime: s.StartTime}
	return s, nil
}

func (f *fakeAPI) StopTimer(_ context.Context, in StopRequest) (*timerdomain.StopResult, error) {
	if f.active == nil || f.active.SessionID != in.ID {
		return nil, &APIError{Status: http.StatusConflict, Message: "timer session already stopped"}
	}
	f.stops = append(f.stops, in)
	f.active = nil
	for i := range f.projects {
		if f.projects[i].ID == "p1" {
			f.projects[i].TotalHours += in.Duration
		}
	}
	return &timerdomain.StopResult{ID: in.ID, EndTime: in.EndTime, Duration: in.Duration, ProjectTotalHours: f.projects[0].TotalHours}, nil
}

func (f *fakeAPI) ActiveTimer(context.Context) (*timerdomain.ActiveTimer, error) {
	return f.active, nil
}

func newTestDashboard(t *testing.T) (*Dashboard, *fakeAPI) {
	t.Helper()
	clk := clock.NewMock()
	api := &fakeAPI{clock: clk, projects: []projectdomain.Project{{ID: "p1", Title: "Lantern", Technologies: []string{"Go"}}}}
	return New(api, NewTimerStore(t.TempDir()), clk), api
}

func TestDashboard_SignInLoads(t *testing.T) {
	d, _ := newTestDashboard(t)

	require.NoError(t, d.SignIn(context.Background()))
	assert.Equal(t, StateIdle, d.Machine.State())
	assert.Len(t, d.Projects, 1)
	assert.Equal(t, "Hana", d.Me.DisplayName)
}

func TestDashboard_LoadFailureShowsBanner(t *testing.T) {
	d, api := newTestDashboard(t)
	api.listErr = &APIError{Status: http.StatusInternalServerError, Message: "connection refused"}

	err := d.SignIn(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateIdle, d.Machine.State())
	assert.Equal(t, "connection refused", d.Machine.Banner)
}

func TestDashboard_CreateAndRejectedForm(t *testing.T) {
	d, _ := newTestDashboard(t)
	ctx := context.Background()
	require.NoError(t, d.SignIn(ctx))

	_, err := d.Create(ctx, projectdomain.CreateInput{})
	require.Error(t, err)
	assert.Equal(t, StateIdle, d.Machine.State())
	assert.Equal(t, "Title is required", d.Machine.Banner)

	p, err := d.Create(ctx, projectdomain.CreateInput{Title: "Koi", Technologies: []string{"Go"}})
	require.NoError(t, err)
	assert.Equal(t, projectdomain.StatusPending, p.Status)
	assert.Equal(t, StateIdle, d.Machine.State())
	assert.Len(t, d.Projects, 2)
}

func TestDashboard_EditAndDelete(t *testing.T) {
	d, _ := newTestDashboard(t)
	ctx := context.Background()
	require.NoError(t, d.SignIn(ctx))

	title := "Lantern 2"
	p, err := d.Edit(ctx, "p1", projectdomain.Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Lantern 2", p.Title)

	require.NoError(t, d.Delete(ctx, "p1"))
	assert.Empty(t, d.Projects)
	assert.Equal(t, StateIdle, d.Machine.State())
}

func TestDashboard_TimerRoundTrip(t *testing.T) {
	d, api := newTestDashboard(t)
	ctx := context.Background()
	require.NoError(t, d.SignIn(ctx))

	require.NoError(t, d.Select("p1"))
	assert.Equal(t, StateTimerIdle, d.Machine.State())

	_, err := d.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateTimerRunning, d.Machine.State())

	api.clock.Add(45 * time.Minute)
	res, err := d.Stop(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, res.Duration, 1e-9)
	assert.Equal(t, StateIdle, d.Machine.State())
	assert.InDelta(t, 0.75, d.Projects[0].TotalHours, 1e-9)
}

func TestDashboard_ManageProjectsWhileTimerRuns(t *testing.T) {
	d, api := newTestDashboard(t)
	ctx := context.Background()
	api.projects = append(api.projects, projectdomain.Project{ID: "p9", Title: "Old", Technologies: []string{"Go"}})
	require.NoError(t, d.SignIn(ctx))

	require.NoError(t, d.Select("p1"))
	_, err := d.Start(ctx)
	require.NoError(t, err)

	require.NoError(t, d.Delete(ctx, "p9"))
	assert.Equal(t, StateTimerRunning, d.Machine.State())
	require.Len(t, d.Projects, 1)
	assert.Equal(t, "p1", d.Projects[0].ID)
	require.NotNil(t, d.Running)
	assert.Equal(t, "Lantern", d.Selected.Title)

	_, err = d.Create(ctx, projectdomain.CreateInput{Title: "Koi", Technologies: []string{"Go"}})
	require.NoError(t, err)
	assert.Equal(t, StateTimerRunning, d.Machine.State())
	assert.Len(t, d.Projects, 2)

	_, err = d.Create(ctx, projectdomain.CreateInput{})
	require.Error(t, err)
	assert.Equal(t, StateTimerRunning, d.Machine.State())

	title := "Lantern 2"
	_, err = d.Edit(ctx, "p1", projectdomain.Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, StateTimerRunning, d.Machine.State())

	res, err := d.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s1", res.ID)
}

func TestDashboard_StopAtUsesGivenEnd(t *testing.T) {
	d, api := newTestDashboard(t)
	ctx := context.Background()
	require.NoError(t, d.SignIn(ctx))
	require.NoError(t, d.Select("p1"))
	rt, err := d.Start(ctx)
	require.NoError(t, err)

	shown := rt.StartTimestamp.Add(30 * time.Minute)
	api.clock.Add(45 * time.Minute)

	res, err := d.StopAt(ctx, shown)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.Duration, 1e-9)
	require.Len(t, api.stops, 1)
	assert.True(t, shown.Equal(api.stops[0].EndTime))
}

func TestDashboard_DeleteRejectedBeforeRequest(t *testing.T) {
	d, api := newTestDashboard(t)

	err := d.Delete(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, api.projects, 1)
}

func TestDashboard_ResumesRunningTimer(t *testing.T) {
	d, api := newTestDashboard(t)
	ctx := context.Background()
	api.active = &timerdomain.ActiveTimer{SessionID: "s9", ProjectID: "p1", StartTime: api.clock.Now()}

	require.NoError(t, d.SignIn(ctx))
	assert.Equal(t, StateTimerRunning, d.Machine.State())
	require.NotNil(t, d.Running)
	assert.Equal(t, "s9", d.Running.SessionID)
	assert.Equal(t, "Lantern", d.Selected.Title)

	stored, err := d.store.Load("U1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "s9", stored.SessionID)
}

func TestDashboard_StopAfterClosedElsewhere(t *testing.T) {
	d, api := newTestDashboard(t)
	ctx := context.Background()
	api.active = &timerdomain.ActiveTimer{SessionID: "s9", ProjectID: "p1", StartTime: api.clock.Now()}
	require.NoError(t, d.SignIn(ctx))

	api.active = nil
	_, err := d.Stop(ctx)
	require.Error(t, err)
	assert.Equal(t, StateIdle, d.Machine.State())
	assert.Equal(t, "timer session already stopped", d.Machine.Banner)
	assert.Nil(t, d.Running)
}

func TestDashboard_StartRequiresSelection(t *testing.T) {
	d, _ := newTestDashboard(t)
	require.NoError(t, d.SignIn(context.Background()))

	_, err := d.Start(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
