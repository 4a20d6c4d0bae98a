package notification

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypeDocumentExpiry      NotificationType = "document_expiry"
	TypeBookingConfirmation NotificationType = "booking_confirmation"
	TypeBookingReminder     NotificationType = "booking_reminder"
	TypeVehicleAlert        NotificationType = "vehicle_alert"
	TypeAchievement         NotificationType = "achievement"
	TypeRewardRedemption    NotificationType = "reward_redemption"
	TypeStreakMilestone     NotificationType = "streak_milestone"
	TypeEmergencySOS        NotificationType = "emergency_sos"
	TypeReferral            NotificationType = "referral"
	TypePromotional         NotificationType = "promotional"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

type NotificationStatus string

const (
	StatusPending NotificationStatus = "pending"
	StatusSent    NotificationStatus = "sent"
	StatusFailed  NotificationStatus = "failed"
)

type Notification struct {
	ID        uuid.UUID            `json:"id" db:"id"`
	UserID    uuid.UUID            `json:"user_id" db:"user_id"`
	Type      NotificationType     `json:"type" db:"type"`
	Priority  NotificationPriority `json:"priority" db:"priority"`
	Status    NotificationStatus   `json:"status" db:"status"`
	Title     string               `json:"title" db:"title"`
	Message   string               `json:"message" db:"message"`
	Data      map[string]any       `json:"data" db:"data"`
	IsRead    bool                 `json:"is_read" db:"is_read"`
	ReadAt    *time.Time           `json:"read_at,omitempty" db:"read_at"`
	SentAt    *time.Time           `json:"sent_at,omitempty" db:"sent_at"`
	CreatedAt time.Time            `json:"created_at" db:"created_at"`
}

type DeviceToken struct {
	Token    string    `json:"token"`
	Platform string    `json:"platform"`
	AddedAt  time.Time `json:"added_at"`
	LastUsed time.Time `json:"last_used"`
}

type NotificationPreferences struct {
	ID                      uuid.UUID       `json:"id" db:"id"`
	UserID                  uuid.UUID       `json:"user_id" db:"user_id"`
	PushEnabled             bool            `json:"push_enabled" db:"push_enabled"`
	InAppEnabled            bool            `json:"in_app_enabled" db:"in_app_enabled"`
	EnabledTypes            map[string]bool `json:"enabled_types" db:"enabled_types"`
	MaxNotificationsPerHour int             `json:"max_notifications_per_hour" db:"max_notifications_per_hour"`
	DeviceTokens            []DeviceToken   `json:"device_tokens" db:"device_tokens"`
	CreatedAt               time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at" db:"updated_at"`
}
