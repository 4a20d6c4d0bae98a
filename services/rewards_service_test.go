package services

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"parklopediaAPI/internal/rewards"
	"parklopediaAPI/internal/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if err := godotenv.Load("../.env"); err != nil {
		_ = godotenv.Load()
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database test")
	}

	db, err := pgxpool.New(context.Background(), dbURL)
	require.NoError(t, err)
	return db
}

func createTestUser(t *testing.T, db *pgxpool.Pool) (*UserService, uuid.UUID) {
	t.Helper()

	userService := NewUserService(db)
	clerkID := "test_clerk_" + uuid.New().String()

	u, err := userService.CreateUser(context.Background(), &user.CreateUserRequest{
		ClerkID:  clerkID,
		Email:    fmt.Sprintf("%s@example.com", clerkID),
		FullName: "Test User",
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		userService.DeleteUserByClerkID(context.Background(), clerkID)
	})

	userID, err := uuid.Parse(u.ID)
	require.NoError(t, err)
	return userService, userID
}

func TestEvaluateStreakIsIdempotentWithinDay(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, userID := createTestUser(t, db)
	svc := NewRewardsService(db)
	ctx := context.Background()

	first, err := svc.EvaluateStreak(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.CurrentStreak)
	assert.Equal(t, 1, first.LongestStreak)
	assert.False(t, first.StreakBonusAwarded)

	second, err := svc.EvaluateStreak(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first, second, "same-day evaluation must not change anything")
}

func TestEvaluateStreakAwardsWeeklyBonusOnce(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, userID := createTestUser(t, db)
	svc := NewRewardsService(db)
	ctx := context.Background()

	// Simulate six consecutive days ending yesterday.
	yesterday := rewards.DayOf(time.Now().Add(-24 * time.Hour))
	_, err := db.Exec(ctx, `
	UPDATE user_stats SET current_streak = 6, longest_streak = 6, last_activity_date = $2
	WHERE user_id = $1
	`, userID, yesterday)
	require.NoError(t, err)

	result, err := svc.EvaluateStreak(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 7, result.CurrentStreak)
	assert.Equal(t, 7, result.LongestStreak)
	assert.True(t, result.StreakBonusAwarded)

	stats, err := svc.GetUserStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, rewards.PointsStreakBonus, stats.TotalPoints)

	// Re-running the same day must not pay the bonus twice.
	again, err := svc.EvaluateStreak(ctx, userID)
	require.NoError(t, err)
	assert.False(t, again.StreakBonusAwarded)

	stats, err = svc.GetUserStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, rewards.PointsStreakBonus, stats.TotalPoints)
}

func TestAwardPointsKeepsLedgerAndTotalInSync(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, userID := createTestUser(t, db)
	svc := NewRewardsService(db)
	ctx := context.Background()

	resp, err := svc.AwardPoints(ctx, &rewards.AwardPointsRequest{
		UserID:     userID,
		Points:     rewards.PointsVehicleAdded,
		ActionType: rewards.ActionVehicleAdded,
	})
	require.NoError(t, err)
	assert.Equal(t, rewards.PointsVehicleAdded, resp.NewTotal)

	var ledgerSum int
	err = db.QueryRow(ctx, `SELECT COALESCE(SUM(points_awarded), 0) FROM reward_events WHERE user_id = $1`, userID).Scan(&ledgerSum)
	require.NoError(t, err)
	assert.Equal(t, resp.NewTotal, ledgerSum)
}

func TestAwardPointsAcceptsNegativeDebits(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, userID := createTestUser(t, db)
	svc := NewRewardsService(db)
	ctx := context.Background()

	_, err := svc.AwardPoints(ctx, &rewards.AwardPointsRequest{
		UserID:     userID,
		Points:     100,
		ActionType: rewards.ActionBookingMade,
	})
	require.NoError(t, err)

	resp, err := svc.AwardPoints(ctx, &rewards.AwardPointsRequest{
		UserID:     userID,
		Points:     -50,
		ActionType: rewards.ActionRewardRedeemed,
	})
	require.NoError(t, err)
	assert.Equal(t, 50, resp.NewTotal)
	assert.Equal(t, -50, resp.Event.PointsAwarded)

	// The debit lands in the ledger like any other event.
	var ledgerSum int
	err = db.QueryRow(ctx, `SELECT COALESCE(SUM(points_awarded), 0) FROM reward_events WHERE user_id = $1`, userID).Scan(&ledgerSum)
	require.NoError(t, err)
	assert.Equal(t, resp.NewTotal, ledgerSum)
}

func TestAwardPointsRejectsBadInput(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	svc := NewRewardsService(db)
	ctx := context.Background()

	_, err := svc.AwardPoints(ctx, &rewards.AwardPointsRequest{
		UserID:     uuid.New(),
		Points:     10,
		ActionType: "login",
	})
	assert.ErrorContains(t, err, "invalid action type")

	_, err = svc.AwardPoints(ctx, &rewards.AwardPointsRequest{
		UserID:     uuid.New(),
		Points:     0,
		ActionType: rewards.ActionVehicleAdded,
	})
	assert.ErrorContains(t, err, "points must be non-zero")

	_, err = svc.AwardPoints(ctx, &rewards.AwardPointsRequest{
		UserID:     uuid.New(),
		Points:     10,
		ActionType: rewards.ActionVehicleAdded,
	})
	assert.ErrorContains(t, err, "user not found")
}

func TestCheckAchievementsUnlocksOnce(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, userID := createTestUser(t, db)
	svc := NewRewardsService(db)
	ctx := context.Background()

	// 1000 points satisfies point_collector.
	_, err := svc.AwardPoints(ctx, &rewards.AwardPointsRequest{
		UserID:     userID,
		Points:     1000,
		ActionType: rewards.ActionBookingMade,
	})
	require.NoError(t, err)

	first, err := svc.CheckAchievements(ctx, userID)
	require.NoError(t, err)

	ids := []string{}
	for _, u := range first.NewAchievements {
		ids = append(ids, u.AchievementID)
	}
	assert.Contains(t, ids, "point_collector")

	second, err := svc.CheckAchievements(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, second.NewAchievements, "already unlocked achievements must not repeat")
	assert.Equal(t, first.TotalUnlocked, second.TotalUnlocked)

	// Unlock must have paid its points exactly once.
	stats, err := svc.GetUserStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1000+300, stats.TotalPoints)
}

func TestApplyReferralCreditsBothSidesOnce(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, referrerID := createTestUser(t, db)
	_, refereeID := createTestUser(t, db)
	svc := NewRewardsService(db)
	ctx := context.Background()

	code, err := svc.GetReferralCode(ctx, referrerID)
	require.NoError(t, err)
	require.NotEmpty(t, code)

	require.NoError(t, svc.ApplyReferral(ctx, refereeID, code))

	referrerStats, err := svc.GetUserStats(ctx, referrerID)
	require.NoError(t, err)
	assert.Equal(t, rewards.PointsReferrer, referrerStats.TotalPoints)

	refereeStats, err := svc.GetUserStats(ctx, refereeID)
	require.NoError(t, err)
	assert.Equal(t, rewards.PointsReferee, refereeStats.TotalPoints)

	err = svc.ApplyReferral(ctx, refereeID, code)
	assert.ErrorContains(t, err, "already applied")

	err = svc.ApplyReferral(ctx, referrerID, code)
	assert.ErrorContains(t, err, "own referral code")
}
