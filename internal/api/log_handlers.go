package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Alpha4Coders/DevTrack/internal/service"
)

func PostLog(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userId")

		var body service.LogRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger, err, 400, "Invalid JSON")
			return
		}

		if err := service.ValidateLogRequest(&body); err != nil {
			HandleError(c, app.Logger, err, 400, "Validation failed")
			return
		}

		log, err := service.CreateLog(c.Request.Context(), app.Logs, app.Users, userID, &body)
		if err != nil {
			HandleError(c, app.Logger, err, 500, "Failed to save log")
			return
		}

		c.JSON(201, gin.H{"data": log})
	}
}

func GetLogs(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userId")

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if page < 1 {
			page = 1
		}
		if limit < 1 || limit > 100 {
			limit = 20
		}

		logs, err := app.Logs.ListLogs(c.Request.Context(), userID)
		if err != nil {
			HandleError(c, app.Logger, err, 500, "Failed to fetch logs")
			return
		}

		total := len(logs)
		start := (page - 1) * limit
		if start > total {
			start = total
		}
		end := start + limit
		if end > total {
			end = total
		}

		HandleSuccess(c, app.Logger, logs[start:end], map[string]any{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": (total + limit - 1) / limit,
		})
	}
}

func GetLog(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userId")

		log, err := service.GetOwnedLog(c.Request.Context(), app.Logs, userID, c.Param("id"))
		if err != nil {
			HandleDomainError(c, app.Logger, err, "Failed to fetch log")
			return
		}
		HandleSuccess(c, app.Logger, log, nil)
	}
}

func PutLog(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userId")

		var updates service.LogUpdateRequest
		if err := c.ShouldBindJSON(&updates); err != nil {
			HandleError(c, app.Logger, err, 400, "Invalid JSON")
			return
		}

		log, err := service.UpdateLog(c.Request.Context(), app.Logs, app.Users, userID, c.Param("id"), &updates)
		if err != nil {
			HandleDomainError(c, app.Logger, err, "Failed to update log")
			return
		}
		HandleSuccess(c, app.Logger, log, nil)
	}
}

func DeleteLog(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userId")

		if err := service.DeleteLog(c.Request.Context(), app.Logs, userID, c.Param("id")); err != nil {
			HandleDomainError(c, app.Logger, err, "Failed to delete log")
			return
		}
		HandleSuccess(c, app.Logger, gin.H{"deleted": true}, nil)
	}
}

func GetLogStats(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userId")

		logs, err := app.Logs.ListLogs(c.Request.Context(), userID)
		if err != nil {
			HandleError(c, app.Logger, err, 500, "Failed to fetch logs for stats")
			return
		}

		stats := service.CalculateStats(logs, time.Now())
		HandleSuccess(c, app.Logger, stats, nil)
	}
}
