package bootstrap

import (
	"database/sql"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/redis/go-redis/v9"

	projectrepo "github.com/sakura-events/sakura-backend/internal/projects/repository"
	projectsvc "github.com/sakura-events/sakura-backend/internal/projects/service"
	timerrepo "github.com/sakura-events/sakura-backend/internal/timers/repository"
	timersvc "github.com/sakura-events/sakura-backend/internal/timers/service"
	"github.com/sakura-events/sakura-backend/internal/users"
)

// Services holds the repositories and services shared by the router and the scheduler.
type Services struct {
	Users    *users.Repo
	Projects *projectsvc.ProjectService
	Timers   *timersvc.TimerService
}

// NewServices wires repositories over db and rdb. Active-timer markers outlive
// maxSession by an hour so the reaper always sees the session first.
func NewServices(db *sql.DB, rdb *redis.Client, clk clock.Clock, maxSession time.Duration) *Services {
	projects := projectrepo.NewProjectRepository(db)
	sessions := timerrepo.NewSessionRepository(db)
	active := timerrepo.NewActiveRepository(rdb, maxSession+time.Hour)

	return &Services{
		Users:    users.NewRepo(db),
		Projects: projectsvc.NewProjectService(projects),
		Timers:   timersvc.NewTimerService(sessions, active, projects, clk, maxSession),
	}
}
