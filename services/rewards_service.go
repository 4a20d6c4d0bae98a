package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"parklopediaAPI/internal/notification"
	"parklopediaAPI/internal/rewards"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RewardsService struct {
	db            *pgxpool.Pool
	notifications *NotificationService
}

func NewRewardsService(db *pgxpool.Pool) *RewardsService {
	return &RewardsService{db: db}
}

// SetNotificationService wires the notification pipeline in after both
// services exist. Notifications are best-effort and never fail the caller.
func (s *RewardsService) SetNotificationService(n *NotificationService) {
	s.notifications = n
}

// EvaluateStreak records one activity day for the user and returns the updated
// streak counters. The user_stats row is locked for the duration of the
// transaction so concurrent evaluations serialize instead of double-counting.
func (s *RewardsService) EvaluateStreak(ctx context.Context, userID uuid.UUID) (*rewards.StreakResult, error) {
	now := time.Now()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	state := rewards.StreakState{}
	err = tx.QueryRow(ctx, `
	SELECT current_streak, longest_streak, last_activity_date
	FROM user_stats
	WHERE user_id = $1
	FOR UPDATE
	`, userID).Scan(&state.CurrentStreak, &state.LongestStreak, &state.LastActivityDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to load streak state: %w", err)
	}

	current, longest, bonusDue := rewards.NextStreak(state, now)
	today := rewards.DayOf(now)

	_, err = tx.Exec(ctx, `
	UPDATE user_stats
	SET current_streak = $2, longest_streak = $3, last_activity_date = $4, updated_at = NOW()
	WHERE user_id = $1
	`, userID, current, longest, today)
	if err != nil {
		return nil, fmt.Errorf("failed to update streak: %w", err)
	}

	// Audit trail only. last_activity_date on user_stats is what streak
	// arithmetic reads.
	_, err = tx.Exec(ctx, `
	INSERT INTO activity_log (user_id, activity_date)
	VALUES ($1, $2)
	ON CONFLICT (user_id, activity_date) DO NOTHING
	`, userID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to log activity: %w", err)
	}

	if bonusDue {
		err = s.awardPointsTx(ctx, tx, userID, rewards.PointsStreakBonus, rewards.ActionStreakBonus, map[string]any{
			"streak_days": current,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to award streak bonus: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit streak evaluation: %w", err)
	}

	if bonusDue && s.notifications != nil {
		go s.notifications.Notify(context.Background(), &notification.CreateNotificationRequest{
			UserID:   userID,
			Type:     notification.TypeStreakMilestone,
			Priority: notification.PriorityNormal,
			Title:    "Streak bonus!",
			Message:  fmt.Sprintf("%d days in a row. You earned %d bonus points.", current, rewards.PointsStreakBonus),
			Data:     map[string]any{"streak_days": current},
		})
	}

	return &rewards.StreakResult{
		CurrentStreak:      current,
		LongestStreak:      longest,
		StreakBonusAwarded: bonusDue,
	}, nil
}

// AwardPoints appends a ledger event and bumps the denormalized total in a
// single transaction. Negative amounts debit the balance; checking that the
// balance covers a debit is the caller's job.
func (s *RewardsService) AwardPoints(ctx context.Context, req *rewards.AwardPointsRequest) (*rewards.AwardPointsResponse, error) {
	if !req.ActionType.Valid() {
		return nil, fmt.Errorf("invalid action type: %s", req.ActionType)
	}
	if req.Points == 0 {
		return nil, fmt.Errorf("points must be non-zero")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	event := &rewards.RewardEvent{
		ID:            uuid.New(),
		UserID:        req.UserID,
		PointsAwarded: req.Points,
		ActionType:    req.ActionType,
		Metadata:      req.Metadata,
		EarnedAt:      time.Now(),
	}

	_, err = tx.Exec(ctx, `
	INSERT INTO reward_events (id, user_id, points_awarded, action_type, metadata, earned_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`, event.ID, event.UserID, event.PointsAwarded, event.ActionType, event.Metadata, event.EarnedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert reward event: %w", err)
	}

	var newTotal int
	err = tx.QueryRow(ctx, `
	UPDATE user_stats
	SET total_points = total_points + $2, updated_at = NOW()
	WHERE user_id = $1
	RETURNING total_points
	`, req.UserID, req.Points).Scan(&newTotal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to update total points: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit points award: %w", err)
	}

	return &rewards.AwardPointsResponse{Event: event, NewTotal: newTotal}, nil
}

// awardPointsTx is the in-transaction form used when an award must be atomic
// with other writes (streak bonus, achievement unlock, referral).
func (s *RewardsService) awardPointsTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, points int, action rewards.ActionType, metadata map[string]any) error {
	_, err := tx.Exec(ctx, `
	INSERT INTO reward_events (id, user_id, points_awarded, action_type, metadata, earned_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	`, uuid.New(), userID, points, action, metadata)
	if err != nil {
		return fmt.Errorf("failed to insert reward event: %w", err)
	}

	_, err = tx.Exec(ctx, `
	UPDATE user_stats
	SET total_points = total_points + $2, updated_at = NOW()
	WHERE user_id = $1
	`, userID, points)
	if err != nil {
		return fmt.Errorf("failed to update total points: %w", err)
	}

	return nil
}

type achievementCounters struct {
	vehicles      int
	documents     int
	bookings      int
	currentStreak int
	totalPoints   int
	familyGroups  int
}

func (s *RewardsService) loadCounters(ctx context.Context, userID uuid.UUID) (*achievementCounters, error) {
	c := &achievementCounters{}

	err := s.db.QueryRow(ctx, `
	SELECT current_streak, total_points FROM user_stats WHERE user_id = $1
	`, userID).Scan(&c.currentStreak, &c.totalPoints)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to load user stats: %w", err)
	}

	err = s.db.QueryRow(ctx, `
	SELECT
		(SELECT COUNT(*) FROM vehicles WHERE user_id = $1),
		(SELECT COUNT(*) FROM documents d JOIN vehicles v ON d.vehicle_id = v.id WHERE v.user_id = $1),
		(SELECT COUNT(*) FROM parking_bookings WHERE user_id = $1 AND status != 'CANCELLED'),
		(SELECT COUNT(*) FROM family_groups WHERE owner_id = $1)
	`, userID).Scan(&c.vehicles, &c.documents, &c.bookings, &c.familyGroups)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievement counters: %w", err)
	}

	return c, nil
}

func (c *achievementCounters) valueFor(t rewards.CriteriaType) int {
	switch t {
	case rewards.CriteriaVehicleCount:
		return c.vehicles
	case rewards.CriteriaDocumentCount:
		return c.documents
	case rewards.CriteriaParkingBookings:
		return c.bookings
	case rewards.CriteriaCurrentStreak:
		return c.currentStreak
	case rewards.CriteriaFamilyGroupsOwed:
		return c.familyGroups
	case rewards.CriteriaTotalPoints:
		return c.totalPoints
	}
	return 0
}

// CheckAchievements evaluates the catalog against the user's live counters and
// unlocks anything newly earned. Uniqueness rests on the (user_id,
// achievement_id) constraint, so two concurrent checks cannot double-unlock.
// Each unlock commits on its own; a failure partway leaves earlier unlocks in
// place and they will not repeat on retry.
func (s *RewardsService) CheckAchievements(ctx context.Context, userID uuid.UUID) (*rewards.CheckAchievementsResponse, error) {
	counters, err := s.loadCounters(ctx, userID)
	if err != nil {
		return nil, err
	}

	newUnlocks := []*rewards.AchievementUnlock{}
	for _, def := range rewards.AchievementCatalog {
		if counters.valueFor(def.CriteriaType) < def.CriteriaValue {
			continue
		}

		unlock, err := s.unlockAchievement(ctx, userID, def)
		if err != nil {
			return nil, err
		}
		if unlock != nil {
			newUnlocks = append(newUnlocks, unlock)
		}
	}

	var total int
	err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM user_achievements WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count achievements: %w", err)
	}

	if len(newUnlocks) > 0 && s.notifications != nil {
		for _, u := range newUnlocks {
			go s.notifications.Notify(context.Background(), &notification.CreateNotificationRequest{
				UserID:   userID,
				Type:     notification.TypeAchievement,
				Priority: notification.PriorityNormal,
				Title:    fmt.Sprintf("Achievement unlocked: %s %s", u.Icon, u.Name),
				Message:  fmt.Sprintf("%s (+%d points)", u.Description, u.PointsAwarded),
				Data:     map[string]any{"achievement_id": u.AchievementID},
			})
		}
	}

	return &rewards.CheckAchievementsResponse{
		NewAchievements: newUnlocks,
		TotalUnlocked:   total,
	}, nil
}

// unlockAchievement inserts the unlock row and its point award atomically.
// Returns nil when the user already holds the achievement.
func (s *RewardsService) unlockAchievement(ctx context.Context, userID uuid.UUID, def rewards.AchievementDef) (*rewards.AchievementUnlock, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	unlock := &rewards.AchievementUnlock{
		ID:            uuid.New(),
		UserID:        userID,
		AchievementID: def.ID,
		Name:          def.Name,
		Description:   def.Description,
		Icon:          def.Icon,
		PointsAwarded: def.Points,
		UnlockedAt:    time.Now(),
	}

	tag, err := tx.Exec(ctx, `
	INSERT INTO user_achievements (id, user_id, achievement_id, name, description, icon, points_awarded, unlocked_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (user_id, achievement_id) DO NOTHING
	`, unlock.ID, unlock.UserID, unlock.AchievementID, unlock.Name, unlock.Description, unlock.Icon, unlock.PointsAwarded, unlock.UnlockedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert achievement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}

	err = s.awardPointsTx(ctx, tx, userID, def.Points, rewards.ActionAchievementUnlocked, map[string]any{
		"achievement_id": def.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to award achievement points: %w", err)
	}

	_, err = tx.Exec(ctx, `
	UPDATE user_stats
	SET achievements_unlocked = achievements_unlocked + 1, updated_at = NOW()
	WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to bump achievement count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit achievement unlock: %w", err)
	}

	return unlock, nil
}

func (s *RewardsService) GetAchievements(ctx context.Context, userID uuid.UUID) ([]*rewards.AchievementUnlock, error) {
	rows, err := s.db.Query(ctx, `
	SELECT id, user_id, achievement_id, name, description, icon, points_awarded, unlocked_at
	FROM user_achievements
	WHERE user_id = $1
	ORDER BY unlocked_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get achievements: %w", err)
	}
	defer rows.Close()

	unlocks := []*rewards.AchievementUnlock{}
	for rows.Next() {
		u := &rewards.AchievementUnlock{}
		err := rows.Scan(&u.ID, &u.UserID, &u.AchievementID, &u.Name, &u.Description, &u.Icon, &u.PointsAwarded, &u.UnlockedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		unlocks = append(unlocks, u)
	}

	return unlocks, nil
}

func (s *RewardsService) GetRewardCatalog(ctx context.Context) ([]*rewards.CatalogReward, error) {
	rows, err := s.db.Query(ctx, `
	SELECT id, name, description, reward_type, points_required, value, max_redemptions_per_user, metadata, is_active
	FROM reward_catalog
	WHERE is_active = TRUE
	ORDER BY points_required ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get reward catalog: %w", err)
	}
	defer rows.Close()

	catalog := []*rewards.CatalogReward{}
	for rows.Next() {
		r := &rewards.CatalogReward{}
		err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.RewardType, &r.PointsRequired, &r.Value, &r.MaxRedemptionsPerUser, &r.Metadata, &r.IsActive)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog reward: %w", err)
		}
		catalog = append(catalog, r)
	}

	return catalog, nil
}

// RedeemReward spends points on a catalog reward. The balance check, the
// deduction, the ledger entry and the redemption row all land in one
// transaction, so a failed redemption never leaves points missing.
func (s *RewardsService) RedeemReward(ctx context.Context, userID, rewardID uuid.UUID) (*rewards.RedeemRewardResponse, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	reward := &rewards.CatalogReward{}
	err = tx.QueryRow(ctx, `
	SELECT id, name, description, reward_type, points_required, value, max_redemptions_per_user, metadata, is_active
	FROM reward_catalog
	WHERE id = $1
	`, rewardID).Scan(&reward.ID, &reward.Name, &reward.Description, &reward.RewardType, &reward.PointsRequired, &reward.Value, &reward.MaxRedemptionsPerUser, &reward.Metadata, &reward.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("reward not found")
		}
		return nil, fmt.Errorf("failed to load reward: %w", err)
	}
	if !reward.IsActive {
		return nil, fmt.Errorf("reward is no longer available")
	}

	if reward.MaxRedemptionsPerUser > 0 {
		var used int
		err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM reward_redemptions WHERE user_id = $1 AND reward_id = $2
		`, userID, rewardID).Scan(&used)
		if err != nil {
			return nil, fmt.Errorf("failed to count redemptions: %w", err)
		}
		if used >= reward.MaxRedemptionsPerUser {
			return nil, fmt.Errorf("redemption limit reached for this reward")
		}
	}

	// The WHERE clause doubles as the balance check. Zero rows means the
	// user either does not exist or cannot afford the reward.
	var newBalance int
	err = tx.QueryRow(ctx, `
	UPDATE user_stats
	SET total_points = total_points - $2,
	    rewards_redeemed = rewards_redeemed + 1,
	    updated_at = NOW()
	WHERE user_id = $1 AND total_points >= $2
	RETURNING total_points
	`, userID, reward.PointsRequired).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("insufficient points")
		}
		return nil, fmt.Errorf("failed to deduct points: %w", err)
	}

	redemption := &rewards.Redemption{
		ID:          uuid.New(),
		UserID:      userID,
		RewardID:    rewardID,
		PointsSpent: reward.PointsRequired,
		RedemptionData: map[string]any{
			"reward_type": reward.RewardType,
			"value":       reward.Value,
		},
		RedeemedAt: time.Now(),
	}

	_, err = tx.Exec(ctx, `
	INSERT INTO reward_redemptions (id, user_id, reward_id, points_spent, redemption_data, redeemed_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`, redemption.ID, redemption.UserID, redemption.RewardID, redemption.PointsSpent, redemption.RedemptionData, redemption.RedeemedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert redemption: %w", err)
	}

	// Negative ledger entry keeps the event sum equal to total_points.
	_, err = tx.Exec(ctx, `
	INSERT INTO reward_events (id, user_id, points_awarded, action_type, metadata, earned_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	`, uuid.New(), userID, -reward.PointsRequired, rewards.ActionRewardRedeemed, map[string]any{
		"reward_id": rewardID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert redemption event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit redemption: %w", err)
	}

	if s.notifications != nil {
		go s.notifications.Notify(context.Background(), &notification.CreateNotificationRequest{
			UserID:   userID,
			Type:     notification.TypeRewardRedemption,
			Priority: notification.PriorityNormal,
			Title:    "Reward redeemed",
			Message:  fmt.Sprintf("You redeemed %s for %d points.", reward.Name, reward.PointsRequired),
			Data:     map[string]any{"reward_id": rewardID.String()},
		})
	}

	return &rewards.RedeemRewardResponse{
		Redemption: redemption,
		NewBalance: newBalance,
		RewardDetails: map[string]any{
			"name":        reward.Name,
			"reward_type": reward.RewardType,
			"value":       reward.Value,
		},
	}, nil
}

func (s *RewardsService) GetUserStats(ctx context.Context, userID uuid.UUID) (*rewards.UserStats, error) {
	stats := &rewards.UserStats{}
	err := s.db.QueryRow(ctx, `
	SELECT user_id, current_streak, longest_streak, last_activity_date, total_points, achievements_unlocked, rewards_redeemed, updated_at
	FROM user_stats
	WHERE user_id = $1
	`, userID).Scan(
		&stats.UserID,
		&stats.CurrentStreak,
		&stats.LongestStreak,
		&stats.LastActivityDate,
		&stats.TotalPoints,
		&stats.AchievementsUnlocked,
		&stats.RewardsRedeemed,
		&stats.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	return stats, nil
}

func (s *RewardsService) GetRecentEvents(ctx context.Context, userID uuid.UUID, limit int) ([]*rewards.RewardEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := s.db.Query(ctx, `
	SELECT id, user_id, points_awarded, action_type, metadata, earned_at
	FROM reward_events
	WHERE user_id = $1
	ORDER BY earned_at DESC
	LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get reward events: %w", err)
	}
	defer rows.Close()

	events := []*rewards.RewardEvent{}
	for rows.Next() {
		e := &rewards.RewardEvent{}
		err := rows.Scan(&e.ID, &e.UserID, &e.PointsAwarded, &e.ActionType, &e.Metadata, &e.EarnedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reward event: %w", err)
		}
		events = append(events, e)
	}

	return events, nil
}

// GetReferralCode returns the user's referral code, generating one on first
// use.
func (s *RewardsService) GetReferralCode(ctx context.Context, userID uuid.UUID) (string, error) {
	var code string
	err := s.db.QueryRow(ctx, `SELECT code FROM referral_codes WHERE user_id = $1`, userID).Scan(&code)
	if err == nil {
		return code, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("failed to get referral code: %w", err)
	}

	code = "PARK-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	_, err = s.db.Exec(ctx, `
	INSERT INTO referral_codes (user_id, code, created_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (user_id) DO NOTHING
	`, userID, code)
	if err != nil {
		return "", fmt.Errorf("failed to create referral code: %w", err)
	}

	// A concurrent insert may have won the race. Re-read what stuck.
	err = s.db.QueryRow(ctx, `SELECT code FROM referral_codes WHERE user_id = $1`, userID).Scan(&code)
	if err != nil {
		return "", fmt.Errorf("failed to get referral code: %w", err)
	}

	return code, nil
}

// ApplyReferral credits both sides of a referral. The unique constraint on
// referral_uses.referee_id caps each user at one referral redemption.
func (s *RewardsService) ApplyReferral(ctx context.Context, refereeID uuid.UUID, code string) error {
	var referrerID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT user_id FROM referral_codes WHERE code = $1`, strings.TrimSpace(code)).Scan(&referrerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("invalid referral code")
		}
		return fmt.Errorf("failed to look up referral code: %w", err)
	}

	if referrerID == refereeID {
		return fmt.Errorf("cannot use your own referral code")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
	INSERT INTO referral_uses (id, referrer_id, referee_id, created_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (referee_id) DO NOTHING
	`, uuid.New(), referrerID, refereeID)
	if err != nil {
		return fmt.Errorf("failed to record referral: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("referral already applied")
	}

	err = s.awardPointsTx(ctx, tx, referrerID, rewards.PointsReferrer, rewards.ActionSuccessfulReferral, map[string]any{
		"referee_id": refereeID.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to credit referrer: %w", err)
	}

	err = s.awardPointsTx(ctx, tx, refereeID, rewards.PointsReferee, rewards.ActionReferralBonus, map[string]any{
		"referrer_id": referrerID.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to credit referee: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit referral: %w", err)
	}

	if s.notifications != nil {
		go s.notifications.Notify(context.Background(), &notification.CreateNotificationRequest{
			UserID:   referrerID,
			Type:     notification.TypeReferral,
			Priority: notification.PriorityNormal,
			Title:    "Referral bonus",
			Message:  fmt.Sprintf("Someone joined with your code. You earned %d points.", rewards.PointsReferrer),
		})
	}

	return nil
}

func (s *RewardsService) GetReferralStats(ctx context.Context, userID uuid.UUID) (*rewards.ReferralStats, error) {
	code, err := s.GetReferralCode(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &rewards.ReferralStats{ReferralCode: code, RecentReferrals: []*rewards.ReferralUseInfo{}}

	err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM referral_uses WHERE referrer_id = $1`, userID).Scan(&stats.TotalReferrals)
	if err != nil {
		return nil, fmt.Errorf("failed to count referrals: %w", err)
	}

	rows, err := s.db.Query(ctx, `
	SELECT u.full_name, u.avatar_url, r.created_at
	FROM referral_uses r
	JOIN users u ON u.id = r.referee_id
	WHERE r.referrer_id = $1
	ORDER BY r.created_at DESC
	LIMIT 10
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent referrals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		info := &rewards.ReferralUseInfo{}
		if err := rows.Scan(&info.RefereeName, &info.AvatarURL, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan referral: %w", err)
		}
		stats.RecentReferrals = append(stats.RecentReferrals, info)
	}

	return stats, nil
}

// RecordAction is the shared hook used by the vehicle, document and booking
// flows: award the fixed point value for the action, then refresh the streak
// and achievements. Failures past the initial award are logged and swallowed
// so the originating CRUD call still succeeds.
func (s *RewardsService) RecordAction(ctx context.Context, userID uuid.UUID, action rewards.ActionType, points int, metadata map[string]any) {
	_, err := s.AwardPoints(ctx, &rewards.AwardPointsRequest{
		UserID:     userID,
		Points:     points,
		ActionType: action,
		Metadata:   metadata,
	})
	if err != nil {
		log.Printf("RecordAction: Failed to award points for %s: %v", action, err)
		return
	}

	if _, err := s.EvaluateStreak(ctx, userID); err != nil {
		log.Printf("RecordAction: Failed to evaluate streak: %v", err)
	}

	if _, err := s.CheckAchievements(ctx, userID); err != nil {
		log.Printf("RecordAction: Failed to check achievements: %v", err)
	}
}
