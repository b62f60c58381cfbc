package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/queriumcorp/rover-gradesync/internal/http/response"
	"github.com/queriumcorp/rover-gradesync/internal/logger"
	"github.com/queriumcorp/rover-gradesync/internal/lti"
	"github.com/queriumcorp/rover-gradesync/internal/provision"
)

type LaunchHandler struct {
	log         *logger.Logger
	provisioner provision.Provisioner
}

func NewLaunchHandler(log *logger.Logger, provisioner provision.Provisioner) *LaunchHandler {
	return &LaunchHandler{
		log:         log.With("Handler", "LaunchHandler"),
		provisioner: provisioner,
	}
}

type launchRequest struct {
	Username     string         `json:"username" binding:"required"`
	LaunchParams map[string]any `json:"launch_params" binding:"required"`
}

type launchResponse struct {
	*provision.Result
	Error *response.APIError `json:"error,omitempty"`
}

// HandleLaunch records a grade-sync launch. Grade-sync failures never fail
// the host session: they come back as a 200 envelope with the error recorded,
// and only a malformed request itself is a 4xx.
func (h *LaunchHandler) HandleLaunch(c *gin.Context) {
	var req launchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	res, err := h.provisioner.Provision(c.Request.Context(), req.Username, lti.NewParams(req.LaunchParams))
	if err != nil {
		code := "provision_failed"
		switch {
		case errors.Is(err, provision.ErrUnknownCourse):
			code = "unknown_course"
		case errors.Is(err, provision.ErrMissingRequiredField):
			code = "missing_required_field"
		}
		h.log.Warn("launch provisioning failed", "username", req.Username, "code", code, "error", err)
		apiErr := response.NewAPIError(code, err)
		response.RespondOK(c, launchResponse{
			Result: &provision.Result{Eligible: false},
			Error:  &apiErr,
		})
		return
	}
	response.RespondOK(c, launchResponse{Result: res})
}
