package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Alpha4Coders/DevTrack/internal/auth"
	"github.com/Alpha4Coders/DevTrack/internal/metrics"
)

// NewRouter wires the full HTTP surface onto a gin engine.
func NewRouter(app *App, provider auth.Provider) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(CORSMiddleware(app.Cfg.CORSOrigin))
	r.Use(metrics.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Scheduler entry point; guarded by its own API key, not user auth.
	r.POST("/api/notifications/check-reminders", CheckReminders(app))

	authed := r.Group("/api")
	authed.Use(auth.Middleware(provider, app.Cfg))
	{
		authed.GET("/logs/stats", GetLogStats(app))
		authed.POST("/logs", PostLog(app))
		authed.GET("/logs", GetLogs(app))
		authed.GET("/logs/:id", GetLog(app))
		authed.PUT("/logs/:id", PutLog(app))
		authed.DELETE("/logs/:id", DeleteLog(app))

		authed.GET("/notifications/status", GetNotificationStatus(app))
		authed.POST("/notifications/register", RegisterPushToken(app))
		authed.DELETE("/notifications/register", UnregisterPushToken(app))
		authed.POST("/notifications/test", SendTestNotification(app))
		authed.POST("/notifications/break", SendBreakReminder(app))

		authed.GET("/github/activity", GetGitHubActivity(app))
		authed.GET("/github/repos", GetGitHubRepos(app))
	}

	return r
}
