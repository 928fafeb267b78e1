package notify

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/Alpha4Coders/DevTrack/internal"
	"github.com/Alpha4Coders/DevTrack/internal/gemini"
	"github.com/Alpha4Coders/DevTrack/internal/github"
	"github.com/Alpha4Coders/DevTrack/internal/metrics"
	"github.com/Alpha4Coders/DevTrack/internal/push"
	"github.com/Alpha4Coders/DevTrack/internal/service"
	"github.com/Alpha4Coders/DevTrack/internal/storage"
)

// Service evaluates reminder triggers and dispatches notifications. It is
// constructed once at startup and injected where needed; there is no hidden
// global instance.
type Service struct {
	users  storage.UserRepository
	logs   storage.LogRepository
	sender push.Sender
	github github.ActivitySource
	ai     gemini.Motivator
	logger internal.Logger
	rng    *rand.Rand
	now    func() time.Time
}

func New(users storage.UserRepository, logs storage.LogRepository, sender push.Sender, gh github.ActivitySource, ai gemini.Motivator, logger internal.Logger) *Service {
	return &Service{
		users:  users,
		logs:   logs,
		sender: sender,
		github: gh,
		ai:     ai,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
	}
}

// UserResult is one user's outcome within a sweep.
type UserResult struct {
	UserID    string               `json:"userId"`
	Trigger   internal.TriggerKind `json:"trigger"`
	Success   bool                 `json:"success"`
	MessageID string               `json:"messageId,omitempty"`
	Error     string               `json:"error,omitempty"`
}

type SweepResult struct {
	Success           bool         `json:"success"`
	CheckedAt         string       `json:"checkedAt"`
	NotificationsSent int          `json:"notificationsSent"`
	Results           []UserResult `json:"results"`
}

// RunSweep is the scheduler entry point: the time-window pass followed by
// the dynamic pass. A failure for one user never aborts the others.
func (s *Service) RunSweep(ctx context.Context) (*SweepResult, error) {
	start := s.now()
	defer func() { metrics.ObserveSweep(time.Since(start)) }()

	result := &SweepResult{
		Success:   true,
		CheckedAt: start.Format("15:04"),
		Results:   []UserResult{},
	}

	users, err := s.users.ListNotifiable(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Infof("reminder sweep at %s: %d users with tokens", result.CheckedAt, len(users))

	for i := range users {
		user := &users[i]
		if !user.OnboardingCompleted || !user.Preferences.NotificationsEnabled() {
			continue
		}

		decision := s.evaluate(ctx, user, start)
		if decision.Trigger == internal.TriggerNone {
			continue
		}

		res := s.dispatch(ctx, user, decision)
		result.Results = append(result.Results, res)
		if res.Success {
			result.NotificationsSent++
		}
	}
	return result, nil
}

// evaluate runs the decision ladder for one user: time-window match first,
// then missed-activity, then project revival. First match wins.
func (s *Service) evaluate(ctx context.Context, user *internal.User, now time.Time) internal.NotificationDecision {
	if trigger := service.MatchTimeWindow(user, now); trigger != internal.TriggerNone {
		return internal.NotificationDecision{Trigger: trigger}
	}

	hasCommits := s.checkTodayCommits(ctx, user)
	hasLogs := s.checkTodayLogs(ctx, user.ID, now)
	if trigger := service.EvaluateDailyActivity(hasCommits, hasLogs, now); trigger != internal.TriggerNone {
		return internal.NotificationDecision{Trigger: trigger}
	}

	if repo := s.findRevivableRepo(ctx, user, now); repo != nil {
		return internal.NotificationDecision{
			Trigger: internal.TriggerProjectRevival,
			Payload: map[string]string{
				"projectName": repo.Name,
				"lastPushed":  repo.UpdatedAt.Format(time.RFC3339),
			},
		}
	}
	return internal.NotificationDecision{Trigger: internal.TriggerNone}
}

// checkTodayCommits asks the source-hosting collaborator whether the user
// pushed anything today. Fails open: an unlinked account or a collaborator
// error counts as activity, so nobody gets nagged over an outage.
func (s *Service) checkTodayCommits(ctx context.Context, user *internal.User) bool {
	if user.GitHubUsername == "" || user.GitHubToken == "" {
		return true
	}
	summary, err := s.github.ActivitySummary(ctx, user.GitHubUsername, user.GitHubToken)
	if err != nil {
		s.logger.Warnf("activity check failed for %s, assuming active: %v", user.ID, err)
		return true
	}
	return summary.TodayEvents > 0
}

// checkTodayLogs fails open like checkTodayCommits.
func (s *Service) checkTodayLogs(ctx context.Context, userID string, now time.Time) bool {
	has, err := s.logs.HasLogOnDay(ctx, userID, now.Format("2006-01-02"))
	if err != nil {
		s.logger.Warnf("log check failed for %s, assuming active: %v", userID, err)
		return true
	}
	return has
}

// findRevivableRepo scans the user's five most recently updated repos and
// returns the first whose last push is 14-90 days old.
func (s *Service) findRevivableRepo(ctx context.Context, user *internal.User, now time.Time) *github.Repo {
	if user.GitHubUsername == "" || user.GitHubToken == "" {
		return nil
	}
	repos, err := s.github.RecentRepos(ctx, user.GitHubUsername, user.GitHubToken, 5)
	if err != nil {
		s.logger.Warnf("repo check failed for %s: %v", user.ID, err)
		return nil
	}
	for i := range repos {
		if service.RevivableRepo(repos[i].UpdatedAt, now) {
			return &repos[i]
		}
	}
	return nil
}

// dispatch composes the message for a decision and sends it, clearing the
// token on an invalid-token result.
func (s *Service) dispatch(ctx context.Context, user *internal.User, decision internal.NotificationDecision) UserResult {
	title := s.titleFor(user, decision)
	body := s.ai.Motivation(ctx, gemini.MotivationStats{
		Streak:        s.currentStreak(ctx, user.ID),
		LastActive:    user.UpdatedAt.Format(time.RFC3339),
		LastStartTime: user.LastStartTime,
		UserGoal:      user.UserGoal,
		ProjectName:   decision.Payload["projectName"],
	})

	data := map[string]string{
		"type":          string(decision.Trigger),
		"lastStartTime": user.LastStartTime,
		"userGoal":      user.UserGoal,
		"reminderMode":  user.Preferences.ReminderMode,
	}
	for k, v := range decision.Payload {
		data[k] = v
	}

	res := s.sender.Send(ctx, user.PushToken, push.Notification{Title: title, Body: body}, data)
	if res.ShouldRemove {
		s.logger.Infof("provider rejected token for %s, clearing it", user.ID)
		if err := s.RemoveToken(ctx, user.ID); err != nil {
			s.logger.Errorf("failed to clear token for %s: %v", user.ID, err)
		}
	}

	if res.Success {
		metrics.NotificationSent(string(decision.Trigger))
	} else {
		metrics.NotificationFailed(string(decision.Trigger))
	}
	return UserResult{
		UserID:    user.ID,
		Trigger:   decision.Trigger,
		Success:   res.Success,
		MessageID: res.MessageID,
		Error:     res.Err,
	}
}

func (s *Service) titleFor(user *internal.User, decision internal.NotificationDecision) string {
	switch decision.Trigger {
	case internal.TriggerMissedActivity:
		return "🔥 Don't break your streak!"
	case internal.TriggerProjectRevival:
		return fmt.Sprintf("🚀 Remember %s?", decision.Payload["projectName"])
	default:
		return service.PickTitle(user.UserGoal, s.rng)
	}
}

func (s *Service) currentStreak(ctx context.Context, userID string) int {
	logs, err := s.logs.ListLogs(ctx, userID)
	if err != nil {
		return 0
	}
	return service.CalculateStats(logs, s.now()).CurrentStreak
}

// SendConsistencyReminder sends the standard reminder outside the sweep,
// backing the test-notification endpoint.
func (s *Service) SendConsistencyReminder(ctx context.Context, userID string) (UserResult, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return UserResult{}, err
	}
	if user.PushToken == "" {
		return UserResult{}, internal.NewAppError(400, "no push token registered")
	}

	trigger := internal.TriggerAdaptiveMatch
	if user.Preferences.ReminderMode == internal.ReminderModeFixed {
		trigger = internal.TriggerFixedMatch
	}
	return s.dispatch(ctx, user, internal.NotificationDecision{Trigger: trigger}), nil
}

// SendBreakReminder is on-demand only: the caller supplies the observed
// inactivity, and it is gated on break detection with a frequent commit
// pattern.
func (s *Service) SendBreakReminder(ctx context.Context, userID string, inactiveMinutes int) (UserResult, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return UserResult{}, err
	}
	// Gating refusals are the caller's configuration state, not faults.
	if !user.Preferences.BreakDetection {
		return UserResult{}, internal.NewAppError(400, "break detection disabled")
	}
	if user.Preferences.CommitPattern != internal.CommitPatternFrequent {
		return UserResult{}, internal.NewAppError(400, "user uses end-only commit pattern")
	}
	if user.PushToken == "" {
		return UserResult{}, internal.NewAppError(400, "no push token registered")
	}
	if inactiveMinutes <= 0 {
		inactiveMinutes = 90
	}

	n := push.Notification{
		Title: "☕ Taking a break?",
		Body:  fmt.Sprintf("No commits detected for %d minutes. Remember to mark your break if you're stepping away!", inactiveMinutes),
	}
	data := map[string]string{
		"type":            string(internal.TriggerBreakReminder),
		"inactiveMinutes": fmt.Sprintf("%d", inactiveMinutes),
	}
	res := s.sender.Send(ctx, user.PushToken, n, data)
	if res.ShouldRemove {
		if err := s.RemoveToken(ctx, userID); err != nil {
			s.logger.Errorf("failed to clear token for %s: %v", userID, err)
		}
	}
	if res.Success {
		metrics.NotificationSent(string(internal.TriggerBreakReminder))
	}
	return UserResult{
		UserID:    userID,
		Trigger:   internal.TriggerBreakReminder,
		Success:   res.Success,
		MessageID: res.MessageID,
		Error:     res.Err,
	}, nil
}

// RegisterToken upserts only the token fields; preferences and activity
// times are untouched.
func (s *Service) RegisterToken(ctx context.Context, userID, token string) error {
	now := s.now()
	return s.users.MergeUser(ctx, userID, internal.UserPatch{
		PushToken:          &token,
		PushTokenUpdatedAt: &now,
	})
}

// RemoveToken clears the token rather than deleting the user record.
func (s *Service) RemoveToken(ctx context.Context, userID string) error {
	empty := ""
	now := s.now()
	return s.users.MergeUser(ctx, userID, internal.UserPatch{
		PushToken:          &empty,
		PushTokenUpdatedAt: &now,
	})
}
