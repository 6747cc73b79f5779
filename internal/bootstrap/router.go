package bootstrap

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpapi "github.com/sakura-events/sakura-backend/internal/api/http"
	httpmw "github.com/sakura-events/sakura-backend/internal/api/http/middleware"
	"github.com/sakura-events/sakura-backend/internal/auth"
	authhttp "github.com/sakura-events/sakura-backend/internal/auth/http"
	authmw "github.com/sakura-events/sakura-backend/internal/auth/middleware"
	projecthttp "github.com/sakura-events/sakura-backend/internal/projects/http"
	timerhttp "github.com/sakura-events/sakura-backend/internal/timers/http"
)

type RouterDeps struct {
	ServiceName  string
	Version      string
	AllowOrigins []string

	DB     httpapi.Pinger
	Redis  httpapi.Pinger
	Tables httpapi.TableCheckFunc

	Resolver auth.IdentityResolver
	Services *Services
	Auth     *authhttp.Handler

	Registry  *prometheus.Registry
	RateRPS   float64
	RateBurst int
	Logger    *zap.Logger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	log := dep.Logger
	if log == nil {
		log = zap.NewNop()
	}
	reg := dep.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmw.RequestID(log))
	r.Use(httpmw.NewMetrics(reg, "sakura").Handler())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Authorization", "Content-Type", httpmw.HeaderRequestID},
		ExposeHeaders:    []string{httpmw.HeaderRequestID},
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	requireIdentity := authmw.RequireIdentity(dep.Resolver)

	if dep.Auth != nil {
		dep.Auth.Register(api.Group("/auth"), requireIdentity)
	}

	if dep.Tables != nil {
		httpapi.NewStoreHandler(dep.Tables).RegisterRoutes(api.Group("/store"))
	}

	limiter := httpmw.NewRateLimiter(dep.RateRPS, dep.RateBurst)
	projectsGroup := api.Group("/projects")
	projectsGroup.Use(requireIdentity)
	projectsGroup.Use(auth.SyncUser(dep.Services.Users, log))
	projectsGroup.Use(limiter.Handler(auth.IdentityID))

	projecthttp.New(dep.Services.Projects).Register(projectsGroup)
	timerhttp.New(dep.Services.Timers).Register(projectsGroup)

	return r
}
