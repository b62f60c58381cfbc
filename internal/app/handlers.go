package app

import (
	httpH "github.com/queriumcorp/rover-gradesync/internal/http/handlers"
	"github.com/queriumcorp/rover-gradesync/internal/logger"
)

type Handlers struct {
	Launch *httpH.LaunchHandler
	Sync   *httpH.SyncHandler
	Health *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Launch: httpH.NewLaunchHandler(log, services.Provisioner),
		Sync:   httpH.NewSyncHandler(log, services.Engine),
		Health: httpH.NewHealthHandler(),
	}
}
