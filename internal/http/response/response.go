package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the error shape every endpoint returns. Launch responses
// embed it alongside the partial result instead of using the envelope,
// since the host treats launch errors as advisory.
type APIError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func NewAPIError(code string, err error) APIError {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return APIError{Code: code, Message: msg}
}

func RespondError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, ErrorEnvelope{Error: NewAPIError(code, err)})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Respond is for endpoints whose success status is not 200, such as the
// sync trigger's 202.
func Respond(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}
