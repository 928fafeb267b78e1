package internal

import (
	"errors"
	"time"
)

// User holds a user's activity state and notification settings. It is
// created lazily the first time a merge write touches it, and only removed
// on account deletion.
type User struct {
	ID                  string      `json:"id"`
	Name                string      `json:"name,omitempty"`
	UserGoal            string      `json:"userGoal,omitempty"`
	OnboardingCompleted bool        `json:"onboardingCompleted"`
	LastStartTime       string      `json:"lastStartTime,omitempty"` // "HH:MM"
	LastEndTime         string      `json:"lastEndTime,omitempty"`   // "HH:MM"
	PushToken           string      `json:"pushToken,omitempty"`
	PushTokenUpdatedAt  time.Time   `json:"pushTokenUpdatedAt,omitempty"`
	Preferences         Preferences `json:"preferences"`
	GitHubUsername      string      `json:"githubUsername,omitempty"`
	GitHubToken         string      `json:"githubToken,omitempty"`
	UpdatedAt           time.Time   `json:"updatedAt,omitempty"`
}

// UserPatch is a partial update of a User. Only non-nil fields are written,
// so concurrent writers touching different fields do not clobber each other.
type UserPatch struct {
	LastStartTime      *string
	LastEndTime        *string
	PushToken          *string
	PushTokenUpdatedAt *time.Time
	Preferences        *Preferences
	UpdatedAt          *time.Time
}

type LogEntry struct {
	ID           string    `json:"id"`
	UserID       string    `json:"uid"`
	Date         DateValue `json:"date"`
	StartTime    string    `json:"startTime"` // "HH:MM"
	EndTime      string    `json:"endTime"`   // "HH:MM"
	LearnedToday string    `json:"learnedToday,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	Mood         string    `json:"mood,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

const (
	ReminderModeAdaptive = "adaptive"
	ReminderModeFixed    = "fixed"

	CommitPatternFrequent = "frequent"
	CommitPatternEndOnly  = "end-only"
)

// Preferences is the single place reminder options live. Defaults are
// applied once, when a record is loaded, so call sites never re-derive them.
type Preferences struct {
	ReminderMode   string `json:"reminderMode,omitempty"`
	FixedTime      string `json:"fixedTime,omitempty"`
	BreakDetection bool   `json:"breakDetection"`
	CommitPattern  string `json:"commitPattern,omitempty"`
	Notifications  *bool  `json:"notifications,omitempty"`
}

func (p *Preferences) ApplyDefaults() {
	if p.ReminderMode == "" {
		p.ReminderMode = ReminderModeAdaptive
	}
	if p.CommitPattern == "" {
		p.CommitPattern = CommitPatternEndOnly
	}
	if p.Notifications == nil {
		enabled := true
		p.Notifications = &enabled
	}
}

func (p Preferences) NotificationsEnabled() bool {
	return p.Notifications == nil || *p.Notifications
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// StatsSnapshot is derived from a user's full log set on demand; it is never
// persisted as the source of truth.
type StatsSnapshot struct {
	TotalLogs     int        `json:"totalLogs"`
	CurrentStreak int        `json:"currentStreak"`
	UniqueDays    int        `json:"uniqueDays"`
	TopTags       []TagCount `json:"topTags"`
	LastLogDate   string     `json:"lastLogDate,omitempty"`
	WeeklyGrowth  int        `json:"weeklyGrowth"`
}

type TriggerKind string

const (
	TriggerNone           TriggerKind = ""
	TriggerAdaptiveMatch  TriggerKind = "adaptive_match"
	TriggerFixedMatch     TriggerKind = "fixed_match"
	TriggerMissedActivity TriggerKind = "missed_activity"
	TriggerProjectRevival TriggerKind = "project_revival"
	TriggerBreakReminder  TriggerKind = "break_reminder"
)

// NotificationDecision is produced and consumed within a single evaluation
// pass; it is never persisted.
type NotificationDecision struct {
	Trigger TriggerKind       `json:"trigger"`
	Payload map[string]string `json:"payload,omitempty"`
}

var (
	ErrNotFound     = errors.New("not found")
	ErrAccessDenied = errors.New("access denied")
)

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}
