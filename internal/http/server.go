package http

import (
	"context"
	"net/http"

	"github.com/TharinduNimesh/apiforge/internal/access"
	"github.com/TharinduNimesh/apiforge/internal/auth"
	"github.com/TharinduNimesh/apiforge/internal/config"
	"github.com/TharinduNimesh/apiforge/internal/gateway"
	"github.com/TharinduNimesh/apiforge/internal/metrics"
	"github.com/TharinduNimesh/apiforge/internal/ratelimit"
	"github.com/TharinduNimesh/apiforge/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Server struct{ e *echo.Echo }

func NewServer(cfg config.Config, mysqlDB *sqlx.DB, rds *redis.Client) *Server {
	// repos (MySQL catalog)
	apisRepo := repository.NewApisRepository(mysqlDB)
	endpointsRepo := repository.NewEndpointsRepository(mysqlDB)
	parametersRepo := repository.NewParametersRepository(mysqlDB)
	departmentsRepo := repository.NewDepartmentsRepository(mysqlDB)
	grantsRepo := repository.NewGrantsRepository(mysqlDB)
	usersRepo := repository.NewUsersRepository(mysqlDB)
	apiKeysRepo := repository.NewAPIKeysRepository(mysqlDB)
	logsRepo := repository.NewRequestLogsRepository(mysqlDB)

	// core
	resolver := auth.NewResolver(apiKeysRepo, usersRepo, cfg.Auth.JWTSecret)
	controller := access.NewController(departmentsRepo, grantsRepo)
	invoker := gateway.NewInvoker(cfg.Upstream.Timeout)

	var limiter ratelimit.Limiter
	if rds != nil {
		limiter = ratelimit.NewRedisLimiter(rds, cfg.RateLimit.KeyPrefix, cfg.RateLimit.Window)
	} else {
		// dev without redis: single-instance in-memory windows
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.Window)
	}

	// echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover(), echoMid.Logger())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// invocation gateway; auth is per-endpoint (admin bypass depends on the
	// target api), so it lives in the handler rather than a group middleware
	e.Any("/invoke/:id", invokeHandler(invokeDeps{
		resolver:   resolver,
		controller: controller,
		limiter:    limiter,
		invoker:    invoker,
		apis:       apisRepo,
		endpoints:  endpointsRepo,
		parameters: parametersRepo,
		logs:       logsRepo,
	}))

	v1 := e.Group("/v1")
	v1.POST("/keys", issueKeyHandler(resolver, apiKeysRepo))
	v1.GET("/apis", listApisHandler(resolver, controller, apisRepo))
	v1.GET("/reports/requests", listRequestsHandler(resolver, logsRepo))

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
