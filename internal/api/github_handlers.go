package api

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// GetGitHubActivity surfaces the user's recent source-hosting activity.
func GetGitHubActivity(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userId")

		user, err := app.Users.GetUser(c.Request.Context(), userID)
		if err != nil {
			HandleDomainError(c, app.Logger, err, "Failed to load user")
			return
		}
		if user.GitHubUsername == "" {
			HandleError(c, app.Logger, errors.New("no GitHub account linked"), 400, "GitHub not linked")
			return
		}

		summary, err := app.GitHub.ActivitySummary(c.Request.Context(), user.GitHubUsername, user.GitHubToken)
		if err != nil {
			HandleError(c, app.Logger, err, 502, "GitHub unavailable")
			return
		}
		HandleSuccess(c, app.Logger, summary, nil)
	}
}

// GetGitHubRepos lists the user's most recently updated repositories.
func GetGitHubRepos(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userId")

		user, err := app.Users.GetUser(c.Request.Context(), userID)
		if err != nil {
			HandleDomainError(c, app.Logger, err, "Failed to load user")
			return
		}
		if user.GitHubUsername == "" {
			HandleError(c, app.Logger, errors.New("no GitHub account linked"), 400, "GitHub not linked")
			return
		}

		repos, err := app.GitHub.RecentRepos(c.Request.Context(), user.GitHubUsername, user.GitHubToken, 10)
		if err != nil {
			HandleError(c, app.Logger, err, 502, "GitHub unavailable")
			return
		}
		HandleSuccess(c, app.Logger, repos, nil)
	}
}
