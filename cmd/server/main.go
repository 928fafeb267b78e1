package main

import (
	"log"
	"os"

	"github.com/Alpha4Coders/DevTrack/internal"
	"github.com/Alpha4Coders/DevTrack/internal/api"
	"github.com/Alpha4Coders/DevTrack/internal/auth"
	"github.com/Alpha4Coders/DevTrack/internal/config"
	"github.com/Alpha4Coders/DevTrack/internal/gemini"
	"github.com/Alpha4Coders/DevTrack/internal/github"
	"github.com/Alpha4Coders/DevTrack/internal/notify"
	"github.com/Alpha4Coders/DevTrack/internal/push"
	"github.com/Alpha4Coders/DevTrack/internal/storage"
)

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	var logs storage.LogRepository
	var users storage.UserRepository
	switch cfg.DBType {
	case "postgres":
		logs, users, err = storage.NewPostgresRepositories(cfg.DBDSN, logger)
	default:
		if _, statErr := os.Stat("data"); os.IsNotExist(statErr) {
			_ = os.Mkdir("data", 0755)
		}
		logs, users, err = storage.NewFileRepositories(cfg.LogsFile, cfg.UsersFile, logger)
	}
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}

	var provider auth.Provider
	if cfg.Env == "development" {
		provider = auth.NewLocalAuthProvider(cfg.JWTSecret, logger)
	} else {
		provider = auth.NewRemoteAuthProvider(cfg.AuthServiceURL, logger)
	}

	gh := github.NewClient(cfg.GitHubAPIURL, cfg.GitHubToken, logger)
	ai := gemini.NewClient(cfg.GeminiAPIURL, cfg.GeminiAPIKey, logger)
	sender := push.NewClient(cfg.PushAPIURL, cfg.PushServiceKey, cfg.CORSOrigin, logger)
	notifier := notify.New(users, logs, sender, gh, ai, logger)

	app := &api.App{
		Cfg:      cfg,
		Logger:   logger,
		Logs:     logs,
		Users:    users,
		Notifier: notifier,
		GitHub:   gh,
	}

	r := api.NewRouter(app, provider)

	logger.Infof("Server running on :%s (env=%s, storage=%s)", cfg.Port, cfg.Env, cfg.DBType)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("failed to start server: %v", err)
	}
}
