package app

import (
	httpMW "github.com/queriumcorp/rover-gradesync/internal/http/middleware"
	"github.com/queriumcorp/rover-gradesync/internal/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
	}
}
