package bootstrap

import (
	"database/sql"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/profitcalc/profitcalc-backend/internal/admin"
	httpapi "github.com/profitcalc/profitcalc-backend/internal/api/http"
	"github.com/profitcalc/profitcalc-backend/internal/api/http/middleware"
	"github.com/profitcalc/profitcalc-backend/internal/auth"
	"github.com/profitcalc/profitcalc-backend/internal/costs"
	"github.com/profitcalc/profitcalc-backend/internal/logger"
	"github.com/profitcalc/profitcalc-backend/internal/projects/cache"
	projecthttp "github.com/profitcalc/profitcalc-backend/internal/projects/http"
	"github.com/profitcalc/profitcalc-backend/internal/projects/repository"
	"github.com/profitcalc/profitcalc-backend/internal/projects/service"
	"github.com/profitcalc/profitcalc-backend/internal/users"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	DB          *sql.DB
	Redis       *redis.Client
	AuthClient  *fbauth.Client
	CacheTTL    time.Duration
	Log         *logger.Logger
}

// Wiring holds the long-lived components the router is built around,
// so the entrypoint can hand them to the reconciler as well.
type Wiring struct {
	ProjectRepo *repository.ProjectRepository
	CostRepo    *repository.CostRepository
	Aggregator  *service.Aggregator
}

func BuildRouter(dep RouterDeps) (*gin.Engine, *Wiring) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLog(dep.Log))
	r.Use(cors.Default())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB)
	healthHandler.RegisterRoutes(r)

	userRepo := users.NewRepo(dep.DB)
	projectRepo := repository.NewProjectRepository(dep.DB)
	costRepo := repository.NewCostRepository(dep.DB)
	reusableRepo := costs.NewRepo(dep.DB)

	var summaryCache service.SummaryCache
	if dep.Redis != nil {
		summaryCache = cache.NewSummaryCache(dep.Redis, dep.CacheTTL, dep.Log)
	}

	agg := service.NewAggregator(projectRepo)
	projectSvc := service.NewProjectService(projectRepo, costRepo, agg, summaryCache, dep.Log)
	adminSvc := admin.NewService(userRepo, projectRepo, costRepo, agg, summaryCache, dep.Log)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(rate.Limit(20), 40))
	api.Use(auth.WithUser(dep.AuthClient, userRepo))

	projecthttp.Register(api.Group("/projects"), projectSvc)
	costs.Register(api.Group("/reusable-costs"), reusableRepo)

	adminGroup := api.Group("/admin")
	adminGroup.Use(auth.RequireAdmin(userRepo))
	admin.Register(adminGroup, adminSvc)

	return r, &Wiring{
		ProjectRepo: projectRepo,
		CostRepo:    costRepo,
		Aggregator:  agg,
	}
}
