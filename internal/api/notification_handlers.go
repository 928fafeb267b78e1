package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Alpha4Coders/DevTrack/internal"
)

func RegisterPushToken(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userId")

		var body struct {
			Token string `json:"token"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.Token == "" {
			HandleError(c, app.Logger, errors.New("push token is required"), 400, "Invalid request")
			return
		}

		if err := app.Notifier.RegisterToken(c.Request.Context(), userID, body.Token); err != nil {
			HandleError(c, app.Logger, err, 500, "Failed to register token")
			return
		}
		HandleSuccess(c, app.Logger, gin.H{"message": "Push notifications enabled"}, nil)
	}
}

func UnregisterPushToken(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userId")

		if err := app.Notifier.RemoveToken(c.Request.Context(), userID); err != nil {
			HandleError(c, app.Logger, err, 500, "Failed to remove token")
			return
		}
		HandleSuccess(c, app.Logger, gin.H{"message": "Push notifications disabled"}, nil)
	}
}

func SendTestNotification(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userId")

		res, err := app.Notifier.SendConsistencyReminder(c.Request.Context(), userID)
		if err != nil {
			HandleDomainError(c, app.Logger, err, "Failed to send test notification")
			return
		}
		if !res.Success {
			HandleError(c, app.Logger, errors.New(res.Error), 500, "Provider rejected notification")
			return
		}
		HandleSuccess(c, app.Logger, gin.H{"messageId": res.MessageID}, nil)
	}
}

func GetNotificationStatus(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userId")

		user, err := app.Users.GetUser(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, internal.ErrNotFound) {
				// No state yet: notifications are simply not set up.
				HandleSuccess(c, app.Logger, gin.H{"enabled": false}, nil)
				return
			}
			HandleError(c, app.Logger, err, 500, "Failed to read notification status")
			return
		}

		HandleSuccess(c, app.Logger, gin.H{
			"enabled":        user.PushToken != "",
			"lastStartTime":  user.LastStartTime,
			"lastEndTime":    user.LastEndTime,
			"tokenUpdatedAt": user.PushTokenUpdatedAt,
		}, nil)
	}
}

// CheckReminders is hit by the external scheduler; when SCHEDULER_API_KEY
// is configured the X-API-Key header must match.
func CheckReminders(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := app.Cfg.SchedulerAPIKey; key != "" && c.GetHeader("X-API-Key") != key {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid API key"})
			return
		}

		result, err := app.Notifier.RunSweep(c.Request.Context())
		if err != nil {
			app.Logger.Errorf("reminder sweep failed: %v", err)
			c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func SendBreakReminder(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userId")

		var body struct {
			InactiveMinutes int `json:"inactiveMinutes"`
		}
		_ = c.ShouldBindJSON(&body)

		res, err := app.Notifier.SendBreakReminder(c.Request.Context(), userID, body.InactiveMinutes)
		if err != nil {
			HandleDomainError(c, app.Logger, err, "Break reminder not sent")
			return
		}
		HandleSuccess(c, app.Logger, res, nil)
	}
}
