package gateway

import (
	"fmt"
	"github.com/apex/log"
	"github.com/labstack/echo/v4"
	"github.com/veedubyou/spleeter-api/src/server/api_error"
	"github.com/veedubyou/spleeter-api/src/server/internal/errors/api"
	"github.com/veedubyou/spleeter-api/src/server/internal/stem/errors"
	"github.com/veedubyou/spleeter-api/src/shared/lib/cerr"
	"net/http"
)

var httpStatusCodeMap = map[api.ErrorCode]int{
	api.DefaultErrorCode:              http.StatusInternalServerError,
	stemerrors.NoFileCode:             http.StatusBadRequest,
	stemerrors.EmptyFilenameCode:      http.StatusBadRequest,
	stemerrors.FileTypeNotAllowedCode: http.StatusBadRequest,
	stemerrors.InvalidModelCode:       http.StatusBadRequest,
	stemerrors.InvalidFormatCode:      http.StatusBadRequest,
	stemerrors.RateLimitedCode:        http.StatusTooManyRequests,
	stemerrors.JobNotFoundCode:        http.StatusNotFound,
	stemerrors.StemNotFoundCode:       http.StatusNotFound,
	stemerrors.SeparationFailedCode:   http.StatusInternalServerError,
	stemerrors.CleanupFailedCode:      http.StatusInternalServerError,
}

func StatusCode(code api.ErrorCode) int {
	statusCode, ok := httpStatusCodeMap[code]
	if !ok {
		msg := fmt.Sprintf("Error code %s has no HTTP status code mapping", code)
		panic(msg)
	}

	return statusCode
}

func ErrorResponse(c echo.Context, err *api.Error) error {
	statusCode := StatusCode(err.ErrorCode)

	logger := log.WithFields(log.Fields(cerr.CollectFields(err.InternalError))).
		WithField("code", err.ErrorCode).
		WithField("path", c.Path()).
		WithError(err)
	if statusCode >= http.StatusInternalServerError {
		logger.Error(err.UserMessage)
	} else {
		logger.Warn(err.UserMessage)
	}

	return c.JSON(statusCode, api_error.JSONAPIError{
		Status:       "error",
		Code:         string(err.ErrorCode),
		Msg:          err.UserMessage,
		ErrorDetails: err.Error(),
	})
}
