package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Alpha4Coders/DevTrack/internal"
)

var ampmRe = regexp.MustCompile(`(?i)^\s*(\d{1,2}):(\d{2})\s*(AM|PM)\s*$`)

// ParseClock reads "HH:MM" or "H:MM AM/PM" into 24-hour clock components.
// Garbage parses to 00:00, matching nothing outside midnight.
func ParseClock(s string) (hour, minute int) {
	if s == "" {
		return 0, 0
	}

	if m := ampmRe.FindStringSubmatch(s); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		switch strings.ToUpper(m[3]) {
		case "PM":
			if hour != 12 {
				hour += 12
			}
		case "AM":
			if hour == 12 {
				hour = 0
			}
		}
		return hour, minute
	}

	parts := strings.Split(s, ":")
	hour, _ = strconv.Atoi(parts[0])
	if len(parts) > 1 {
		minute, _ = strconv.Atoi(parts[1])
	}
	return hour, minute
}

// reminderWindowMinutes is how far a tick may drift from the target minute
// and still count as a match; the sweep runs on a coarse schedule, not at
// the exact minute.
const reminderWindowMinutes = 5

// MatchTimeWindow is the time-window pass of the reminder evaluator. Fixed
// mode matches the user's configured time, adaptive mode matches their most
// recent start time. Users without the needed time field are skipped.
func MatchTimeWindow(user *internal.User, now time.Time) internal.TriggerKind {
	prefs := user.Preferences
	if !prefs.NotificationsEnabled() {
		return internal.TriggerNone
	}

	currentHour, currentMinute := now.Hour(), now.Minute()

	if prefs.ReminderMode == internal.ReminderModeFixed {
		if prefs.FixedTime == "" {
			return internal.TriggerNone
		}
		h, m := ParseClock(prefs.FixedTime)
		if currentHour == h && abs(currentMinute-m) <= reminderWindowMinutes {
			return internal.TriggerFixedMatch
		}
		return internal.TriggerNone
	}

	if user.LastStartTime == "" {
		return internal.TriggerNone
	}
	h, m := ParseClock(user.LastStartTime)
	if currentHour == h && abs(currentMinute-m) <= reminderWindowMinutes {
		return internal.TriggerAdaptiveMatch
	}
	return internal.TriggerNone
}

// missedActivityHour is the local hour from which a day with no commits and
// no logs counts as missed.
const missedActivityHour = 20

// EvaluateDailyActivity is the first step of the dynamic pass: no commit
// activity and no log entry late in the day means the day is about to lapse.
func EvaluateDailyActivity(hasCommits, hasLogs bool, now time.Time) internal.TriggerKind {
	if !hasCommits && !hasLogs && now.Hour() >= missedActivityHour {
		return internal.TriggerMissedActivity
	}
	return internal.TriggerNone
}

const (
	revivalMinAge = 14 * 24 * time.Hour
	revivalMaxAge = 90 * 24 * time.Hour
)

// RevivableRepo reports whether a repository's last push is old enough to
// nudge about but recent enough to still be relevant.
func RevivableRepo(lastPush, now time.Time) bool {
	age := now.Sub(lastPush)
	return age > revivalMinAge && age < revivalMaxAge
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
