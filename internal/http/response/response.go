package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/todo-backend/internal/domain/aggregates"
	"github.com/yungbote/todo-backend/internal/platform/apierr"
	"github.com/yungbote/todo-backend/internal/platform/logger"
)

const internalMessage = "internal server error"

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// StatusFor maps an aggregate error code to its HTTP status.
func StatusFor(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation:
		return http.StatusBadRequest
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondFailure writes the structured envelope for any error returned by the
// service layer. 5xx details are logged, never sent.
func RespondFailure(c *gin.Context, log *logger.Logger, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		if ae.Status >= http.StatusInternalServerError {
			logFailure(c, log, err)
			RespondError(c, ae.Status, "internal", errors.New(internalMessage))
			return
		}
		RespondError(c, ae.Status, ae.Code, ae)
		return
	}

	var agg *domainagg.Error
	if errors.As(err, &agg) {
		status := StatusFor(agg.Code)
		if status < http.StatusInternalServerError {
			RespondError(c, status, string(agg.Code), errors.New(publicMessage(agg)))
			return
		}
	}

	logFailure(c, log, err)
	RespondError(c, http.StatusInternalServerError, "internal", errors.New(internalMessage))
}

// publicMessage hides store-level causes (constraint names, SQL) behind a
// fixed message for the code.
func publicMessage(e *domainagg.Error) string {
	if e.Cause == nil {
		return e.PublicMessage()
	}
	switch e.Code {
	case domainagg.CodeConflict:
		return "conflicting write"
	case domainagg.CodeNotFound:
		return "resource not found"
	default:
		return "invalid request"
	}
}

func logFailure(c *gin.Context, log *logger.Logger, err error) {
	if log == nil {
		return
	}
	log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
}
