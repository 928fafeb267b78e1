package notify

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Alpha4Coders/DevTrack/internal"
	"github.com/Alpha4Coders/DevTrack/internal/gemini"
	"github.com/Alpha4Coders/DevTrack/internal/github"
	"github.com/Alpha4Coders/DevTrack/internal/push"
	"github.com/Alpha4Coders/DevTrack/internal/storage"
)

type sentMessage struct {
	Token        string
	Notification push.Notification
	Data         map[string]string
}

type fakeSender struct {
	result push.Result
	sent   []sentMessage
}

func (f *fakeSender) Send(ctx context.Context, token string, n push.Notification, data map[string]string) push.Result {
	f.sent = append(f.sent, sentMessage{Token: token, Notification: n, Data: data})
	return f.result
}

type fakeActivity struct {
	summary *github.ActivitySummary
	repos   []github.Repo
	err     error
}

func (f *fakeActivity) ActivitySummary(ctx context.Context, username, token string) (*github.ActivitySummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func (f *fakeActivity) RecentRepos(ctx context.Context, username, token string, limit int) ([]github.Repo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.repos, nil
}

type fakeMotivator struct{}

func (fakeMotivator) Motivation(ctx context.Context, stats gemini.MotivationStats) string {
	return "stay focused"
}

func seedStorage(t *testing.T, users []internal.User) (storage.LogRepository, storage.UserRepository) {
	t.Helper()
	dir := t.TempDir()
	usersFile := filepath.Join(dir, "users.json")
	data, err := json.Marshal(users)
	assert.NoError(t, err)
	assert.NoError(t, os.WriteFile(usersFile, data, 0644))

	logs, userRepo, err := storage.NewFileRepositories(filepath.Join(dir, "logs.json"), usersFile, internal.NewNopLogger())
	assert.NoError(t, err)
	return logs, userRepo
}

func newTestService(t *testing.T, users []internal.User, sender *fakeSender, gh *fakeActivity, clock time.Time) (*Service, storage.UserRepository) {
	t.Helper()
	logs, userRepo := seedStorage(t, users)
	s := New(userRepo, logs, sender, gh, fakeMotivator{}, internal.NewNopLogger())
	s.now = func() time.Time { return clock }
	s.rng = rand.New(rand.NewSource(1))
	return s, userRepo
}

func activeUser(id string) internal.User {
	return internal.User{
		ID:                  id,
		OnboardingCompleted: true,
		LastStartTime:       "09:00",
		PushToken:           "tok-" + id,
		UserGoal:            "Working on side projects",
	}
}

func clockAt(hour, minute int) time.Time {
	return time.Date(2025, 3, 15, hour, minute, 0, 0, time.Local)
}

func TestSweepSendsAdaptiveReminderInWindow(t *testing.T) {
	sender := &fakeSender{result: push.Result{Success: true, MessageID: "m1"}}
	gh := &fakeActivity{summary: &github.ActivitySummary{TodayEvents: 1}}
	s, _ := newTestService(t, []internal.User{activeUser("u1")}, sender, gh, clockAt(9, 3))

	result, err := s.RunSweep(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, result.NotificationsSent)
	assert.Len(t, sender.sent, 1)
	assert.Equal(t, "tok-u1", sender.sent[0].Token)
	assert.Equal(t, string(internal.TriggerAdaptiveMatch), sender.sent[0].Data["type"])
	assert.Equal(t, "stay focused", sender.sent[0].Notification.Body)
}

func TestSweepOutsideWindowSendsNothing(t *testing.T) {
	sender := &fakeSender{result: push.Result{Success: true}}
	gh := &fakeActivity{summary: &github.ActivitySummary{TodayEvents: 1}}
	s, _ := newTestService(t, []internal.User{activeUser("u1")}, sender, gh, clockAt(9, 6))

	result, err := s.RunSweep(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, result.NotificationsSent)
	assert.Empty(t, sender.sent)
}

func TestSweepRespectsFixedMode(t *testing.T) {
	user := activeUser("u1")
	user.Preferences = internal.Preferences{
		ReminderMode: internal.ReminderModeFixed,
		FixedTime:    "9:00 PM",
	}
	sender := &fakeSender{result: push.Result{Success: true}}
	gh := &fakeActivity{summary: &github.ActivitySummary{TodayEvents: 1}}
	s, _ := newTestService(t, []internal.User{user}, sender, gh, clockAt(21, 3))

	result, err := s.RunSweep(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, result.NotificationsSent)
	assert.Equal(t, string(internal.TriggerFixedMatch), sender.sent[0].Data["type"])
}

func TestSweepSkipsDisabledAndUnonboardedUsers(t *testing.T) {
	off := false
	disabled := activeUser("u1")
	disabled.Preferences.Notifications = &off
	unonboarded := activeUser("u2")
	unonboarded.OnboardingCompleted = false

	sender := &fakeSender{result: push.Result{Success: true}}
	gh := &fakeActivity{summary: &github.ActivitySummary{TodayEvents: 1}}
	s, _ := newTestService(t, []internal.User{disabled, unonboarded}, sender, gh, clockAt(9, 0))

	result, err := s.RunSweep(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, result.NotificationsSent)
	assert.Empty(t, sender.sent)
}

func TestMissedActivityLateInTheDay(t *testing.T) {
	user := activeUser("u1")
	user.GitHubUsername = "dev"
	user.GitHubToken = "gh-token"

	sender := &fakeSender{result: push.Result{Success: true}}
	gh := &fakeActivity{summary: &github.ActivitySummary{TodayEvents: 0}}
	s, _ := newTestService(t, []internal.User{user}, sender, gh, clockAt(21, 0))

	result, err := s.RunSweep(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, result.NotificationsSent)
	assert.Equal(t, string(internal.TriggerMissedActivity), sender.sent[0].Data["type"])
	assert.Equal(t, "🔥 Don't break your streak!", sender.sent[0].Notification.Title)
}

func TestCollaboratorFailureFailsOpen(t *testing.T) {
	user := activeUser("u1")
	user.GitHubUsername = "dev"
	user.GitHubToken = "gh-token"

	sender := &fakeSender{result: push.Result{Success: true}}
	gh := &fakeActivity{err: errors.New("github is down")}
	s, _ := newTestService(t, []internal.User{user}, sender, gh, clockAt(21, 0))

	result, err := s.RunSweep(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, result.NotificationsSent)
	assert.Empty(t, sender.sent)
}

func TestProjectRevival(t *testing.T) {
	user := activeUser("u1")
	user.GitHubUsername = "dev"
	user.GitHubToken = "gh-token"

	now := clockAt(12, 0)
	sender := &fakeSender{result: push.Result{Success: true}}
	gh := &fakeActivity{
		summary: &github.ActivitySummary{TodayEvents: 3},
		repos: []github.Repo{
			{Name: "fresh", UpdatedAt: now.AddDate(0, 0, -2)},
			{Name: "dormant", UpdatedAt: now.AddDate(0, 0, -20)},
			{Name: "ancient", UpdatedAt: now.AddDate(0, 0, -120)},
		},
	}
	s, _ := newTestService(t, []internal.User{user}, sender, gh, now)

	result, err := s.RunSweep(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, result.NotificationsSent)
	assert.Equal(t, string(internal.TriggerProjectRevival), sender.sent[0].Data["type"])
	assert.Equal(t, "dormant", sender.sent[0].Data["projectName"])
	assert.Contains(t, sender.sent[0].Notification.Title, "dormant")
}

func TestInvalidTokenClearsRegistry(t *testing.T) {
	sender := &fakeSender{result: push.Result{Err: "invalid_token", ShouldRemove: true}}
	gh := &fakeActivity{summary: &github.ActivitySummary{TodayEvents: 1}}
	s, users := newTestService(t, []internal.User{activeUser("u1")}, sender, gh, clockAt(9, 0))

	result, err := s.RunSweep(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, result.NotificationsSent)
	assert.Len(t, result.Results, 1)
	assert.False(t, result.Results[0].Success)

	u, err := users.GetUser(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Empty(t, u.PushToken)
	assert.Equal(t, "09:00", u.LastStartTime)
}

func TestSweepIsolatesFailures(t *testing.T) {
	failing := activeUser("u1")
	failing.GitHubUsername = "dev"
	failing.GitHubToken = "gh-token"
	failing.LastStartTime = "07:00"
	healthy := activeUser("u2")
	healthy.LastStartTime = "21:00"

	sender := &fakeSender{result: push.Result{Success: true}}
	gh := &fakeActivity{err: errors.New("github is down")}
	s, _ := newTestService(t, []internal.User{failing, healthy}, sender, gh, clockAt(21, 2))

	result, err := s.RunSweep(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, result.NotificationsSent)
	assert.Equal(t, "tok-u2", sender.sent[0].Token)
}

func TestBreakReminderGating(t *testing.T) {
	user := activeUser("u1")
	user.Preferences = internal.Preferences{BreakDetection: false}
	sender := &fakeSender{result: push.Result{Success: true}}
	gh := &fakeActivity{}
	s, _ := newTestService(t, []internal.User{user}, sender, gh, clockAt(12, 0))

	var appErr *internal.AppError
	_, err := s.SendBreakReminder(context.Background(), "u1", 90)
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)

	endOnly := activeUser("u2")
	endOnly.Preferences = internal.Preferences{BreakDetection: true, CommitPattern: internal.CommitPatternEndOnly}
	s2, _ := newTestService(t, []internal.User{endOnly}, sender, gh, clockAt(12, 0))
	_, err = s2.SendBreakReminder(context.Background(), "u2", 90)
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestBreakReminderSends(t *testing.T) {
	user := activeUser("u1")
	user.Preferences = internal.Preferences{BreakDetection: true, CommitPattern: internal.CommitPatternFrequent}
	sender := &fakeSender{result: push.Result{Success: true, MessageID: "m9"}}
	s, _ := newTestService(t, []internal.User{user}, sender, &fakeActivity{}, clockAt(12, 0))

	res, err := s.SendBreakReminder(context.Background(), "u1", 45)
	assert.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, internal.TriggerBreakReminder, res.Trigger)
	assert.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Notification.Body, "45 minutes")
	assert.Equal(t, "45", sender.sent[0].Data["inactiveMinutes"])
}
