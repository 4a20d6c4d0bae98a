package rewards

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr(t time.Time) *time.Time { return &t }

func TestDayOf(t *testing.T) {
	// 23:30 in UTC+5 is 18:30 UTC the same day
	loc := time.FixedZone("UTC+5", 5*3600)
	late := time.Date(2025, 3, 10, 23, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), DayOf(late))

	// 02:00 in UTC+5 is the previous UTC day
	early := time.Date(2025, 3, 10, 2, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), DayOf(early))
}

func TestNextStreakFirstActivity(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	current, longest, bonus := NextStreak(StreakState{}, now)

	assert.Equal(t, 1, current)
	assert.Equal(t, 1, longest)
	assert.False(t, bonus)
}

func TestNextStreakSameDayIsIdempotent(t *testing.T) {
	morning := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)

	state := StreakState{CurrentStreak: 4, LongestStreak: 9, LastActivityDate: ptr(morning)}

	current, longest, bonus := NextStreak(state, evening)

	assert.Equal(t, 4, current)
	assert.Equal(t, 9, longest)
	assert.False(t, bonus)
}

func TestNextStreakConsecutiveDayIncrements(t *testing.T) {
	yesterday := time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC)
	today := time.Date(2025, 3, 10, 0, 1, 0, 0, time.UTC)

	state := StreakState{CurrentStreak: 4, LongestStreak: 4, LastActivityDate: ptr(yesterday)}

	current, longest, bonus := NextStreak(state, today)

	assert.Equal(t, 5, current)
	assert.Equal(t, 5, longest)
	assert.False(t, bonus)
}

func TestNextStreakGapResetsToOne(t *testing.T) {
	lastWeek := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	today := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	state := StreakState{CurrentStreak: 20, LongestStreak: 20, LastActivityDate: ptr(lastWeek)}

	current, longest, bonus := NextStreak(state, today)

	assert.Equal(t, 1, current)
	assert.Equal(t, 20, longest, "longest streak survives a reset")
	assert.False(t, bonus)
}

func TestNextStreakBonusOnMultiplesOfSeven(t *testing.T) {
	for _, streakBefore := range []int{6, 13, 20} {
		last := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
		state := StreakState{
			CurrentStreak:    streakBefore,
			LongestStreak:    streakBefore,
			LastActivityDate: ptr(last),
		}

		current, _, bonus := NextStreak(state, last.Add(24*time.Hour))

		assert.Equal(t, streakBefore+1, current)
		assert.True(t, bonus, "streak of %d should earn the weekly bonus", current)
	}
}

func TestNextStreakNoBonusOffCycle(t *testing.T) {
	last := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	state := StreakState{CurrentStreak: 7, LongestStreak: 7, LastActivityDate: ptr(last)}

	current, _, bonus := NextStreak(state, last.Add(24*time.Hour))

	assert.Equal(t, 8, current)
	assert.False(t, bonus)
}

func TestNextStreakBonusNotRepeatedSameDay(t *testing.T) {
	// The streak already sits on 7 with today's activity recorded. A second
	// call the same day must not award the bonus again.
	today := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	state := StreakState{CurrentStreak: 7, LongestStreak: 7, LastActivityDate: ptr(today)}

	current, _, bonus := NextStreak(state, today.Add(2*time.Hour))

	assert.Equal(t, 7, current)
	assert.False(t, bonus)
}

func TestNextStreakDayOneNoBonus(t *testing.T) {
	// A streak of 1 never earns a bonus even though a reset could in theory
	// land on a stored value of 7.
	gap := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	state := StreakState{CurrentStreak: 7, LongestStreak: 7, LastActivityDate: ptr(gap)}

	current, _, bonus := NextStreak(state, gap.AddDate(0, 0, 14))

	assert.Equal(t, 1, current)
	assert.False(t, bonus)
}
