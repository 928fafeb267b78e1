package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Alpha4Coders/DevTrack/internal"
)

var statsNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.Local)

func logOn(daysAgo int, tags ...string) internal.LogEntry {
	day := statsNow.AddDate(0, 0, -daysAgo).Format("2006-01-02")
	return internal.LogEntry{
		ID:     day,
		UserID: "u1",
		Date:   internal.IsoString(day),
		Tags:   tags,
	}
}

func TestEmptyLogSet(t *testing.T) {
	stats := CalculateStats(nil, statsNow)
	assert.Equal(t, 0, stats.TotalLogs)
	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 0, stats.UniqueDays)
	assert.Equal(t, 0, stats.WeeklyGrowth)
	assert.Empty(t, stats.TopTags)
	assert.Empty(t, stats.LastLogDate)
}

func TestStreakThreeConsecutiveDays(t *testing.T) {
	logs := []internal.LogEntry{logOn(0), logOn(1), logOn(2)}
	stats := CalculateStats(logs, statsNow)
	assert.Equal(t, 3, stats.CurrentStreak)
	assert.Equal(t, 3, stats.UniqueDays)
	assert.Equal(t, statsNow.Format("2006-01-02"), stats.LastLogDate)
}

func TestStreakGraceDay(t *testing.T) {
	// Nothing today, but yesterday back to D-4 is contiguous.
	logs := []internal.LogEntry{logOn(1), logOn(2), logOn(3), logOn(4)}
	stats := CalculateStats(logs, statsNow)
	assert.Equal(t, 4, stats.CurrentStreak)
}

func TestStreakBrokenWhenNothingRecent(t *testing.T) {
	logs := []internal.LogEntry{logOn(2), logOn(3), logOn(4), logOn(5)}
	stats := CalculateStats(logs, statsNow)
	assert.Equal(t, 0, stats.CurrentStreak)
}

func TestDuplicateDaysCollapse(t *testing.T) {
	logs := []internal.LogEntry{logOn(0), logOn(0), logOn(1)}
	stats := CalculateStats(logs, statsNow)
	assert.Equal(t, 3, stats.TotalLogs)
	assert.Equal(t, 2, stats.UniqueDays)
	assert.Equal(t, 2, stats.CurrentStreak)
}

func TestWeeklyGrowthZeroWhenStreakBroken(t *testing.T) {
	// Plenty of recent-ish activity, but none today or yesterday.
	logs := []internal.LogEntry{logOn(3), logOn(4), logOn(5), logOn(6)}
	stats := CalculateStats(logs, statsNow)
	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 0, stats.WeeklyGrowth)
}

func TestWeeklyGrowthFromNothing(t *testing.T) {
	logs := []internal.LogEntry{logOn(0), logOn(1), logOn(2)}
	stats := CalculateStats(logs, statsNow)
	assert.Greater(t, stats.CurrentStreak, 0)
	assert.Equal(t, 100, stats.WeeklyGrowth)
}

func TestWeeklyGrowthDecline(t *testing.T) {
	// 2 logs this week, 4 the week before: round((2-4)/4*100) = -50.
	logs := []internal.LogEntry{
		logOn(0), logOn(1),
		logOn(8), logOn(9), logOn(10), logOn(11),
	}
	stats := CalculateStats(logs, statsNow)
	assert.Greater(t, stats.CurrentStreak, 0)
	assert.Equal(t, -50, stats.WeeklyGrowth)
}

func TestTopTagsOrderAndLimit(t *testing.T) {
	logs := []internal.LogEntry{
		logOn(0, "go", "sql"),
		logOn(1, "go", "docker"),
		logOn(2, "go", "sql", "react", "vim", "tmux", "rust"),
	}
	stats := CalculateStats(logs, statsNow)
	assert.Len(t, stats.TopTags, 5)
	assert.Equal(t, internal.TagCount{Tag: "go", Count: 3}, stats.TopTags[0])
	assert.Equal(t, internal.TagCount{Tag: "sql", Count: 2}, stats.TopTags[1])
	// Ties keep first-encountered order.
	assert.Equal(t, "docker", stats.TopTags[2].Tag)
}
