package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Alpha4Coders/DevTrack/internal"
)

func newTestStorage(t *testing.T) *FileStorage {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFileStorage(filepath.Join(dir, "logs.json"), filepath.Join(dir, "users.json"), internal.NewNopLogger())
	assert.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func TestSaveAndListLogs(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	log := &internal.LogEntry{
		ID:        "l1",
		UserID:    "u1",
		Date:      internal.IsoString("2025-03-15"),
		StartTime: "09:00",
		EndTime:   "11:30",
		Tags:      []string{"go"},
		CreatedAt: time.Now(),
	}
	assert.NoError(t, s.SaveLog(ctx, log))

	logs, err := s.ListLogs(ctx, "u1")
	assert.NoError(t, err)
	assert.Len(t, logs, 1)
	assert.Equal(t, "2025-03-15", logs[0].Date.DayKey())

	other, err := s.ListLogs(ctx, "u2")
	assert.NoError(t, err)
	assert.Empty(t, other)
}

func TestGetUpdateDeleteLog(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	log := &internal.LogEntry{ID: "l1", UserID: "u1", Date: internal.IsoString("2025-03-15"), CreatedAt: time.Now()}
	assert.NoError(t, s.SaveLog(ctx, log))

	got, err := s.GetLog(ctx, "l1")
	assert.NoError(t, err)
	got.Mood = "great"
	assert.NoError(t, s.UpdateLog(ctx, got))

	again, err := s.GetLog(ctx, "l1")
	assert.NoError(t, err)
	assert.Equal(t, "great", again.Mood)

	assert.NoError(t, s.DeleteLog(ctx, "l1"))
	_, err = s.GetLog(ctx, "l1")
	assert.ErrorIs(t, err, internal.ErrNotFound)
	assert.ErrorIs(t, s.DeleteLog(ctx, "l1"), internal.ErrNotFound)
}

func TestHasLogOnDay(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	assert.NoError(t, s.SaveLog(ctx, &internal.LogEntry{ID: "l1", UserID: "u1", Date: internal.IsoString("2025-03-15")}))

	has, err := s.HasLogOnDay(ctx, "u1", "2025-03-15")
	assert.NoError(t, err)
	assert.True(t, has)

	has, err = s.HasLogOnDay(ctx, "u1", "2025-03-16")
	assert.NoError(t, err)
	assert.False(t, has)
}

func TestMergeUserCreatesAndPatches(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	assert.NoError(t, s.MergeUser(ctx, "u1", internal.UserPatch{LastStartTime: strPtr("09:00")}))

	u, err := s.GetUser(ctx, "u1")
	assert.NoError(t, err)
	assert.Equal(t, "09:00", u.LastStartTime)
	// Defaults are applied at load time, not per call site.
	assert.Equal(t, internal.ReminderModeAdaptive, u.Preferences.ReminderMode)
	assert.True(t, u.Preferences.NotificationsEnabled())
}

func TestTokenRegistrationIsMergeNotOverwrite(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	now := time.Now()

	assert.NoError(t, s.MergeUser(ctx, "u1", internal.UserPatch{LastStartTime: strPtr("09:00")}))
	assert.NoError(t, s.MergeUser(ctx, "u1", internal.UserPatch{PushToken: strPtr("tok1"), PushTokenUpdatedAt: &now}))
	assert.NoError(t, s.MergeUser(ctx, "u1", internal.UserPatch{PushToken: strPtr("tok2"), PushTokenUpdatedAt: &now}))

	// A concurrent, unrelated preference update must not lose the token.
	prefs := internal.Preferences{ReminderMode: internal.ReminderModeFixed, FixedTime: "9:00 PM"}
	assert.NoError(t, s.MergeUser(ctx, "u1", internal.UserPatch{Preferences: &prefs}))

	u, err := s.GetUser(ctx, "u1")
	assert.NoError(t, err)
	assert.Equal(t, "tok2", u.PushToken)
	assert.Equal(t, "09:00", u.LastStartTime)
	assert.Equal(t, internal.ReminderModeFixed, u.Preferences.ReminderMode)
}

func TestTokenRemovalClearsOnlyTokenFields(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	now := time.Now()

	assert.NoError(t, s.MergeUser(ctx, "u1", internal.UserPatch{
		LastStartTime:      strPtr("09:00"),
		PushToken:          strPtr("tok1"),
		PushTokenUpdatedAt: &now,
	}))
	assert.NoError(t, s.MergeUser(ctx, "u1", internal.UserPatch{PushToken: strPtr(""), PushTokenUpdatedAt: &now}))

	u, err := s.GetUser(ctx, "u1")
	assert.NoError(t, err)
	assert.Empty(t, u.PushToken)
	assert.Equal(t, "09:00", u.LastStartTime)

	users, err := s.ListNotifiable(ctx)
	assert.NoError(t, err)
	assert.Empty(t, users)
}

func TestListNotifiable(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	assert.NoError(t, s.MergeUser(ctx, "u1", internal.UserPatch{PushToken: strPtr("tok1")}))
	assert.NoError(t, s.MergeUser(ctx, "u2", internal.UserPatch{LastStartTime: strPtr("10:00")}))

	users, err := s.ListNotifiable(ctx)
	assert.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].ID)
}
