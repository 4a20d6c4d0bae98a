package rewards

import (
	"time"

	"github.com/google/uuid"
)

type ActionType string

const (
	ActionVehicleAdded        ActionType = "vehicle_added"
	ActionDocumentUploaded    ActionType = "document_uploaded"
	ActionBookingMade         ActionType = "booking_made"
	ActionAchievementUnlocked ActionType = "achievement_unlocked"
	ActionStreakBonus         ActionType = "streak_bonus"
	ActionSuccessfulReferral  ActionType = "successful_referral"
	ActionReferralBonus       ActionType = "referral_bonus"
	ActionRewardRedeemed      ActionType = "reward_redeemed"
)

// Fixed point values for user actions.
const (
	PointsVehicleAdded     = 50
	PointsDocumentUploaded = 25
	PointsBookingMade      = 30
	PointsStreakBonus      = 50
	PointsReferrer         = 100
	PointsReferee          = 50
)

func (a ActionType) Valid() bool {
	switch a {
	case ActionVehicleAdded, ActionDocumentUploaded, ActionBookingMade,
		ActionAchievementUnlocked, ActionStreakBonus, ActionSuccessfulReferral,
		ActionReferralBonus, ActionRewardRedeemed:
		return true
	}
	return false
}

// UserStats is the per-user denormalized counters row. total_points always
// equals the sum of reward_events.points_awarded for the user.
type UserStats struct {
	UserID               uuid.UUID  `json:"user_id" db:"user_id"`
	CurrentStreak        int        `json:"current_streak" db:"current_streak"`
	LongestStreak        int        `json:"longest_streak" db:"longest_streak"`
	LastActivityDate     *time.Time `json:"last_activity_date" db:"last_activity_date"`
	TotalPoints          int        `json:"total_points" db:"total_points"`
	AchievementsUnlocked int        `json:"achievements_unlocked" db:"achievements_unlocked"`
	RewardsRedeemed      int        `json:"rewards_redeemed" db:"rewards_redeemed"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

// RewardEvent is an append-only ledger row, never updated or deleted.
type RewardEvent struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	UserID        uuid.UUID      `json:"user_id" db:"user_id"`
	PointsAwarded int            `json:"points_awarded" db:"points_awarded"`
	ActionType    ActionType     `json:"action_type" db:"action_type"`
	Metadata      map[string]any `json:"metadata" db:"metadata"`
	EarnedAt      time.Time      `json:"earned_at" db:"earned_at"`
}

// AchievementUnlock is one row per (user, achievement_id), created exactly once.
type AchievementUnlock struct {
	ID            uuid.UUID `json:"id" db:"id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	AchievementID string    `json:"achievement_id" db:"achievement_id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description" db:"description"`
	Icon          string    `json:"icon" db:"icon"`
	PointsAwarded int       `json:"points_awarded" db:"points_awarded"`
	UnlockedAt    time.Time `json:"unlocked_at" db:"unlocked_at"`
}

type StreakResult struct {
	CurrentStreak      int  `json:"current_streak"`
	LongestStreak      int  `json:"longest_streak"`
	StreakBonusAwarded bool `json:"streak_bonus_awarded"`
}

type AwardPointsRequest struct {
	UserID     uuid.UUID      `json:"user_id"`
	Points     int            `json:"points"`
	ActionType ActionType     `json:"action_type"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type AwardPointsResponse struct {
	Event    *RewardEvent `json:"event"`
	NewTotal int          `json:"new_total"`
}

type CheckAchievementsResponse struct {
	NewAchievements []*AchievementUnlock `json:"new_achievements"`
	TotalUnlocked   int                  `json:"total_unlocked"`
}

type RewardType string

const (
	RewardDiscount       RewardType = "discount"
	RewardCashback       RewardType = "cashback"
	RewardFreeService    RewardType = "free_service"
	RewardPremiumFeature RewardType = "premium_feature"
)

// CatalogReward is a redeemable entry from the reward_catalog table.
type CatalogReward struct {
	ID                    uuid.UUID      `json:"id" db:"id"`
	Name                  string         `json:"name" db:"name"`
	Description           string         `json:"description" db:"description"`
	RewardType            RewardType     `json:"reward_type" db:"reward_type"`
	PointsRequired        int            `json:"points_required" db:"points_required"`
	Value                 float64        `json:"value" db:"value"`
	MaxRedemptionsPerUser int            `json:"max_redemptions_per_user" db:"max_redemptions_per_user"`
	Metadata              map[string]any `json:"metadata" db:"metadata"`
	IsActive              bool           `json:"is_active" db:"is_active"`
}

type Redemption struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	UserID         uuid.UUID      `json:"user_id" db:"user_id"`
	RewardID       uuid.UUID      `json:"reward_id" db:"reward_id"`
	PointsSpent    int            `json:"points_spent" db:"points_spent"`
	RedemptionData map[string]any `json:"redemption_data" db:"redemption_data"`
	RedeemedAt     time.Time      `json:"redeemed_at" db:"redeemed_at"`
}

type RedeemRewardResponse struct {
	Redemption    *Redemption    `json:"redemption"`
	NewBalance    int            `json:"new_balance"`
	RewardDetails map[string]any `json:"reward_details"`
}

type ReferralStats struct {
	ReferralCode    string             `json:"referral_code"`
	TotalReferrals  int                `json:"total_referrals"`
	RecentReferrals []*ReferralUseInfo `json:"recent_referrals"`
}

type ReferralUseInfo struct {
	RefereeName string    `json:"referee_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
