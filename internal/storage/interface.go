package storage

import (
	"context"

	"github.com/Alpha4Coders/DevTrack/internal"
)

type LogRepository interface {
	SaveLog(ctx context.Context, log *internal.LogEntry) error
	GetLog(ctx context.Context, id string) (*internal.LogEntry, error)
	UpdateLog(ctx context.Context, log *internal.LogEntry) error
	DeleteLog(ctx context.Context, id string) error
	ListLogs(ctx context.Context, userID string) ([]internal.LogEntry, error)
	HasLogOnDay(ctx context.Context, userID, dayKey string) (bool, error)
}

type UserRepository interface {
	GetUser(ctx context.Context, id string) (*internal.User, error)
	// MergeUser applies only the fields set on the patch, creating the user
	// record if it does not exist yet.
	MergeUser(ctx context.Context, id string, patch internal.UserPatch) error
	// ListNotifiable returns users holding a registered push token.
	ListNotifiable(ctx context.Context) ([]internal.User, error)
}
