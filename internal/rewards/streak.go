package rewards

import "time"

// StreakBonusPoints is awarded once for every 7th consecutive day.
const StreakBonusPoints = PointsStreakBonus

// StreakState is the persisted streak portion of a user_stats row.
type StreakState struct {
	CurrentStreak    int
	LongestStreak    int
	LastActivityDate *time.Time
}

// DayOf truncates t to its UTC calendar day. All streak arithmetic is done in
// UTC so results do not depend on the server's local timezone.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// NextStreak applies one activity event at time now to the stored state and
// returns the updated counters. Calling it repeatedly within the same UTC day
// returns the same counters (same-day idempotence).
func NextStreak(state StreakState, now time.Time) (current, longest int, bonusDue bool) {
	current = state.CurrentStreak
	longest = state.LongestStreak

	if state.LastActivityDate == nil {
		current = 1
	} else {
		daysSince := int(DayOf(now).Sub(DayOf(*state.LastActivityDate)).Hours() / 24)
		switch {
		case daysSince == 1:
			current++
		case daysSince > 1:
			current = 1
		}
		// daysSince == 0 leaves the streak untouched
	}

	if current > longest {
		longest = current
	}

	// The bonus fires only on the transition onto a multiple of 7, which
	// happens at most once per streak value since streaks only grow by one.
	bonusDue = current > 1 && current%7 == 0 && current != state.CurrentStreak

	return current, longest, bonusDue
}
