package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vcscsvcscs/nutrifast/internal/handler"
	"github.com/vcscsvcscs/nutrifast/internal/middleware"
	"github.com/vcscsvcscs/nutrifast/pkg/api"
	"go.uber.org/zap"
)

// RouterDeps are the pieces NewRouter mounts
type RouterDeps struct {
	Server  api.ServerInterface
	Tokens  middleware.TokenParser
	Metrics *middleware.Metrics
	Logger  *zap.Logger
}

// NewRouter builds the gin engine with the middleware chain, the API
// operations, /metrics and /openapi.json
func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	r := gin.New()

	// Recovery must be first
	r.Use(middleware.RecoveryMiddleware(deps.Logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestIDMiddleware())
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
	}
	r.Use(middleware.RequestLoggingMiddleware(deps.Logger))
	r.Use(middleware.ErrorLoggingMiddleware(deps.Logger))

	api.RegisterHandlersWithOptions(r, deps.Server, api.GinServerOptions{
		Middlewares:  []api.MiddlewareFunc{middleware.Authenticate(deps.Tokens, deps.Logger)},
		ErrorHandler: handler.ParamErrorHandler,
	})

	if deps.Metrics != nil {
		r.GET("/metrics", deps.Metrics.Handler())
	}

	spec, err := api.SpecHandler()
	if err != nil {
		return nil, err
	}
	r.GET("/openapi.json", spec)

	return r, nil
}

// RegisterPoolMetrics exposes connection pool gauges on reg
func (a *App) RegisterPoolMetrics(reg prometheus.Registerer) error {
	gauges := []struct {
		name, help string
		value      func() float64
	}{
		{"db_pool_acquired_connections", "Connections currently checked out of the pool.", func() float64 { return float64(a.Pool.Stat().AcquiredConns()) }},
		{"db_pool_idle_connections", "Idle connections held by the pool.", func() float64 { return float64(a.Pool.Stat().IdleConns()) }},
		{"db_pool_total_connections", "All connections owned by the pool.", func() float64 { return float64(a.Pool.Stat().TotalConns()) }},
	}
	for _, g := range gauges {
		if err := reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "nutrifast",
			Name:      g.name,
			Help:      g.help,
		}, g.value)); err != nil {
			return err
		}
	}
	return nil
}
