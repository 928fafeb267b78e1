package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Alpha4Coders/DevTrack/internal"
	"github.com/Alpha4Coders/DevTrack/internal/response"
)

func HandleError(c *gin.Context, logger internal.Logger, err error, status int, msg string) {
	requestID := c.GetString("request_id")
	logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	var resp response.APIResponse
	switch status {
	case 400:
		resp = response.BadRequest(msg + ": " + err.Error())
	case 403:
		resp = response.Forbidden(msg)
	case 404:
		resp = response.NotFound(msg)
	case 500:
		resp = response.InternalError(msg + ": " + err.Error())
	default:
		resp = response.NewAppError(status, msg+": "+err.Error())
	}
	c.JSON(status, resp)
}

// HandleDomainError maps the domain error taxonomy onto HTTP statuses.
func HandleDomainError(c *gin.Context, logger internal.Logger, err error, msg string) {
	var appErr *internal.AppError
	switch {
	case errors.Is(err, internal.ErrNotFound):
		HandleError(c, logger, err, 404, msg)
	case errors.Is(err, internal.ErrAccessDenied):
		HandleError(c, logger, err, 403, msg)
	case errors.As(err, &appErr):
		HandleError(c, logger, err, appErr.Code, msg)
	default:
		HandleError(c, logger, err, 500, msg)
	}
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	requestID := c.GetString("request_id")
	logger.Infof("[request_id=%s] Success", requestID)
	c.JSON(200, response.Success(data, meta))
}
