package http

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/Nikita7465/React-TS-server/internal/auth"
	"github.com/Nikita7465/React-TS-server/internal/config"
	"github.com/Nikita7465/React-TS-server/internal/http/handlers"
	"github.com/Nikita7465/React-TS-server/internal/http/middlewares"
	"github.com/Nikita7465/React-TS-server/internal/observability"
	"github.com/Nikita7465/React-TS-server/internal/repo/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // 1 MiB, plenty for credential payloads

func NewRouter(log *slog.Logger, pool *sql.DB, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("credential-service"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	// metrics

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)
	r.Use(prom.GinHandleMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// health

	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.PingContext(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// wire up the credential endpoints

	usersRepo := sqlite.NewUsersRepo(pool, prom)
	issuer := auth.NewIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTLDays)*24*time.Hour)

	authHandler := handlers.NewAuthHandler(usersRepo, issuer, log)

	r.POST("/register", authHandler.Register)
	r.POST("/auth", authHandler.Authenticate)

	return r
}
