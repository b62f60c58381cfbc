package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/queriumcorp/rover-gradesync/internal/gradesync"
	"github.com/queriumcorp/rover-gradesync/internal/http/response"
	"github.com/queriumcorp/rover-gradesync/internal/logger"
)

type SyncHandler struct {
	log    *logger.Logger
	engine gradesync.Engine
}

func NewSyncHandler(log *logger.Logger, engine gradesync.Engine) *SyncHandler {
	return &SyncHandler{
		log:    log.With("Handler", "SyncHandler"),
		engine: engine,
	}
}

// TriggerSync runs a sync pass for one course and returns its report.
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	courseID := c.Param("course_id")
	force := c.Query("force") == "true"

	rep, err := h.engine.SyncCourse(c.Request.Context(), courseID, gradesync.Options{ForceAll: force})
	if errors.Is(err, gradesync.ErrAlreadyRunning) {
		response.Respond(c, http.StatusConflict, rep)
		return
	}
	if err != nil {
		h.log.Error("sync pass failed", "course_id", courseID, "error", err)
		response.RespondError(c, http.StatusInternalServerError, "sync_failed", err)
		return
	}
	if rep.Status == gradesync.StatusMisconfigured {
		response.Respond(c, http.StatusUnprocessableEntity, rep)
		return
	}
	response.Respond(c, http.StatusAccepted, rep)
}
