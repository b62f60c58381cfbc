package app

import (
	internalhttp "github.com/queriumcorp/rover-gradesync/internal/http"
	"github.com/queriumcorp/rover-gradesync/internal/logger"
)

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *internalhttp.Server {
	log.Info("Wiring router...")
	return internalhttp.NewServer(internalhttp.RouterConfig{
		Log:            log,
		AuthMiddleware: middleware.Auth,
		LaunchHandler:  handlers.Launch,
		SyncHandler:    handlers.Sync,
		HealthHandler:  handlers.Health,
	})
}
