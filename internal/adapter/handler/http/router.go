package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ordelo/orders-ms/internal/adapter/config"
	"github.com/ordelo/orders-ms/internal/adapter/storage"
	"github.com/ordelo/orders-ms/pkg/metrics"
	"go.uber.org/zap"
)

// Router serves the operational HTTP surface: liveness, readiness and
// metrics. The business API lives on the bus, not here.
type Router struct {
	*gin.Engine
	db     *storage.DB
	logger *zap.Logger
}

func NewRouter(conf *config.HTTP, db *storage.DB, logger *zap.Logger) (*Router, error) {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{Engine: engine, db: db, logger: logger}

	engine.GET("/healthz", r.health)
	engine.GET("/readyz", r.ready)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r, nil
}

func (r *Router) health(ctx *gin.Context) {
	ctx.Status(http.StatusOK)
}

func (r *Router) ready(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := r.db.Ping(pingCtx); err != nil {
		r.logger.Error("readiness ping", zap.Error(err))
		ctx.Status(http.StatusServiceUnavailable)
		return
	}
	ctx.Status(http.StatusOK)
}

// Serve starts the HTTP server
func (r *Router) Serve(listenAddr string) error {
	return r.Run(listenAddr)
}
