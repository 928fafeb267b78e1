package service

import (
	"math"
	"sort"
	"time"

	"github.com/Alpha4Coders/DevTrack/internal"
)

// CalculateStats aggregates a user's full log set into a StatsSnapshot. It
// is pure: all records are already fetched and now is passed in.
func CalculateStats(logs []internal.LogEntry, now time.Time) internal.StatsSnapshot {
	snapshot := internal.StatsSnapshot{
		TotalLogs: len(logs),
		TopTags:   []internal.TagCount{},
	}
	if len(logs) == 0 {
		return snapshot
	}

	daySet := make(map[string]bool)
	var lastDay string
	for _, l := range logs {
		key := l.Date.DayKey()
		if key == "" {
			continue
		}
		daySet[key] = true
		if key > lastDay {
			lastDay = key
		}
	}
	snapshot.UniqueDays = len(daySet)
	snapshot.LastLogDate = lastDay

	snapshot.CurrentStreak = currentStreak(daySet, now)
	snapshot.TopTags = topTags(logs, 5)
	snapshot.WeeklyGrowth = weeklyGrowth(logs, now, snapshot.CurrentStreak)
	return snapshot
}

// currentStreak counts consecutive local-calendar days with at least one
// log, anchored at today, or at yesterday when today has no entry yet so a
// streak survives until the day fully lapses.
func currentStreak(daySet map[string]bool, now time.Time) int {
	today := now.Format("2006-01-02")
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")

	anchor := now
	switch {
	case daySet[today]:
	case daySet[yesterday]:
		anchor = now.AddDate(0, 0, -1)
	default:
		return 0
	}

	streak := 0
	for day := anchor; daySet[day.Format("2006-01-02")]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

func topTags(logs []internal.LogEntry, limit int) []internal.TagCount {
	counts := make(map[string]int)
	var order []string
	for _, l := range logs {
		for _, tag := range l.Tags {
			if counts[tag] == 0 {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	// Ties keep first-encountered order.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > limit {
		order = order[:limit]
	}
	top := make([]internal.TagCount, 0, len(order))
	for _, tag := range order {
		top = append(top, internal.TagCount{Tag: tag, Count: counts[tag]})
	}
	return top
}

// weeklyGrowth compares raw log timestamps against rolling 7- and 14-day
// boundaries. The streak uses normalized day keys instead; near midnight
// the two views can disagree by a day, which is accepted behavior.
func weeklyGrowth(logs []internal.LogEntry, now time.Time, streak int) int {
	oneWeekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	currentWeek := 0
	previousWeek := 0
	for _, l := range logs {
		ts, ok := l.Date.Time()
		if !ok {
			continue
		}
		switch {
		case !ts.Before(oneWeekAgo):
			currentWeek++
		case !ts.Before(twoWeeksAgo):
			previousWeek++
		}
	}

	if streak == 0 {
		return 0
	}
	if previousWeek == 0 {
		if currentWeek > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round(float64(currentWeek-previousWeek) / float64(previousWeek) * 100))
}
