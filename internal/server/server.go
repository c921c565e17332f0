package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/keygatehq/keygate/internal/audit"
	auditdomain "github.com/keygatehq/keygate/internal/audit/domain"
	"github.com/keygatehq/keygate/internal/config"
	"github.com/keygatehq/keygate/internal/license"
	licensedomain "github.com/keygatehq/keygate/internal/license/domain"
	"github.com/keygatehq/keygate/internal/observability"
	obsmiddleware "github.com/keygatehq/keygate/internal/observability/logger"
	obsmetrics "github.com/keygatehq/keygate/internal/observability/metrics"
	obstracing "github.com/keygatehq/keygate/internal/observability/tracing"
	"github.com/keygatehq/keygate/internal/ratelimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	license.Module,
	audit.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(CORS())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger, _ *Server) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	licenseSvc licensedomain.Service
	auditSvc   auditdomain.Service
	limiter    verifyLimiter
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	LicenseSvc licensedomain.Service
	AuditSvc   auditdomain.Service
	Limiter    *ratelimit.VerifyLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		licenseSvc: p.LicenseSvc,
		auditSvc:   p.AuditSvc,
		limiter:    p.Limiter,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// Public: anyone holding a key string may verify it.
	api.GET("/verify", s.RateLimited(), s.VerifyKey)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin", s.AdminRequired())

	admin.POST("/keys", s.MintKey)
	admin.GET("/keys", s.ListKeys)
	admin.GET("/keys/:id", s.GetKey)
	admin.POST("/keys/:id/paid", s.MarkPaid)
	admin.POST("/keys/:id/used", s.MarkUsed)
	admin.POST("/keys/:id/revoke", s.RevokeKey)
	admin.GET("/audit", s.ListAuditLogs)
}
