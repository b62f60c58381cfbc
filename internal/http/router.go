package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/queriumcorp/rover-gradesync/internal/http/handlers"
	httpMW "github.com/queriumcorp/rover-gradesync/internal/http/middleware"
	"github.com/queriumcorp/rover-gradesync/internal/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware

	LaunchHandler *httpH.LaunchHandler
	SyncHandler   *httpH.SyncHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("rover-gradesync"))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Launch path: the host authenticates launches before calling us, so
	// it stays outside the operator auth group.
	if cfg.LaunchHandler != nil {
		r.POST("/lti/launch", cfg.LaunchHandler.HandleLaunch)
	}

	api := r.Group("/api")
	{
		if cfg.AuthMiddleware != nil {
			api.Use(cfg.AuthMiddleware.RequireAuth())
		}
		if cfg.SyncHandler != nil {
			api.POST("/courses/:course_id/sync", cfg.SyncHandler.TriggerSync)
		}
	}

	return r
}
