package api

import (
	"github.com/Alpha4Coders/DevTrack/internal"
	"github.com/Alpha4Coders/DevTrack/internal/config"
	"github.com/Alpha4Coders/DevTrack/internal/github"
	"github.com/Alpha4Coders/DevTrack/internal/notify"
	"github.com/Alpha4Coders/DevTrack/internal/storage"
)

// App is the explicit service context: built once in main, torn down at
// shutdown, passed to handlers by reference.
type App struct {
	Cfg      *config.Config
	Logger   internal.Logger
	Logs     storage.LogRepository
	Users    storage.UserRepository
	Notifier *notify.Service
	GitHub   github.ActivitySource
}
