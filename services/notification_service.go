package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"parklopediaAPI/internal/notification"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationService struct {
	db         *pgxpool.Pool
	dispatcher *NotificationDispatcher
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) SetDispatcher(d *NotificationDispatcher) {
	s.dispatcher = d
}

// Notify stores a notification and queues it for push delivery. Preference
// checks happen here so callers never need to know about them.
func (s *NotificationService) Notify(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error) {
	prefs, err := s.GetPreferences(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if enabled, known := prefs.EnabledTypes[string(req.Type)]; known && !enabled {
		log.Printf("Notify: Type %s disabled for user %s, skipping", req.Type, req.UserID)
		return nil, nil
	}
	if !prefs.InAppEnabled && !prefs.PushEnabled {
		log.Printf("Notify: All channels disabled for user %s, skipping", req.UserID)
		return nil, nil
	}

	priority := req.Priority
	if priority == "" {
		priority = notification.PriorityNormal
	}

	notif := &notification.Notification{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Type:      req.Type,
		Priority:  priority,
		Status:    notification.StatusPending,
		Title:     req.Title,
		Message:   req.Message,
		Data:      req.Data,
		CreatedAt: time.Now(),
	}

	_, err = s.db.Exec(ctx, `
	INSERT INTO notifications (id, user_id, type, priority, status, title, message, data, is_read, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, $9)
	`, notif.ID, notif.UserID, notif.Type, notif.Priority, notif.Status, notif.Title, notif.Message, notif.Data, notif.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	// Urgent notifications bypass the hourly cap.
	if priority != notification.PriorityUrgent && prefs.MaxNotificationsPerHour > 0 {
		var lastHour int
		err = s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND created_at > NOW() - INTERVAL '1 hour' AND status = 'sent'
		`, req.UserID).Scan(&lastHour)
		if err == nil && lastHour >= prefs.MaxNotificationsPerHour {
			log.Printf("Notify: Hourly cap reached for user %s, keeping in-app only", req.UserID)
			return notif, nil
		}
	}

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(notif, prefs)
	}

	return notif, nil
}

func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, page, pageSize int) (*notification.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	rows, err := s.db.Query(ctx, `
	SELECT id, user_id, type, priority, status, title, message, data, is_read, read_at, sent_at, created_at
	FROM notifications
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3
	`, userID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	defer rows.Close()

	notifs := []*notification.Notification{}
	for rows.Next() {
		n := &notification.Notification{}
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Priority, &n.Status, &n.Title, &n.Message, &n.Data, &n.IsRead, &n.ReadAt, &n.SentAt, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifs = append(notifs, n)
	}

	resp := &notification.NotificationListResponse{
		Notifications: notifs,
		Page:          page,
		PageSize:      pageSize,
	}

	err = s.db.QueryRow(ctx, `
	SELECT COUNT(*), COUNT(*) FILTER (WHERE is_read = FALSE)
	FROM notifications WHERE user_id = $1
	`, userID).Scan(&resp.TotalCount, &resp.UnreadCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	return resp, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
	UPDATE notifications SET is_read = TRUE, read_at = NOW()
	WHERE id = $1 AND user_id = $2 AND is_read = FALSE
	`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := s.db.Exec(ctx, `
	UPDATE notifications SET is_read = TRUE, read_at = NOW()
	WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetPreferences returns the user's preference row, creating defaults on
// first access.
func (s *NotificationService) GetPreferences(ctx context.Context, userID uuid.UUID) (*notification.NotificationPreferences, error) {
	prefs := &notification.NotificationPreferences{}
	err := s.db.QueryRow(ctx, `
	SELECT id, user_id, push_enabled, in_app_enabled, enabled_types, max_notifications_per_hour, device_tokens, created_at, updated_at
	FROM notification_preferences
	WHERE user_id = $1
	`, userID).Scan(
		&prefs.ID,
		&prefs.UserID,
		&prefs.PushEnabled,
		&prefs.InAppEnabled,
		&prefs.EnabledTypes,
		&prefs.MaxNotificationsPerHour,
		&prefs.DeviceTokens,
		&prefs.CreatedAt,
		&prefs.UpdatedAt,
	)
	if err == nil {
		return prefs, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	prefs = &notification.NotificationPreferences{
		ID:                      uuid.New(),
		UserID:                  userID,
		PushEnabled:             true,
		InAppEnabled:            true,
		EnabledTypes:            map[string]bool{},
		MaxNotificationsPerHour: 20,
		DeviceTokens:            []notification.DeviceToken{},
		CreatedAt:               time.Now(),
		UpdatedAt:               time.Now(),
	}

	_, err = s.db.Exec(ctx, `
	INSERT INTO notification_preferences (id, user_id, push_enabled, in_app_enabled, enabled_types, max_notifications_per_hour, device_tokens, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (user_id) DO NOTHING
	`, prefs.ID, prefs.UserID, prefs.PushEnabled, prefs.InAppEnabled, prefs.EnabledTypes, prefs.MaxNotificationsPerHour, prefs.DeviceTokens, prefs.CreatedAt, prefs.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create default preferences: %w", err)
	}

	return prefs, nil
}

func (s *NotificationService) UpdatePreferences(ctx context.Context, userID uuid.UUID, req *notification.UpdatePreferencesRequest) (*notification.NotificationPreferences, error) {
	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.PushEnabled != nil {
		prefs.PushEnabled = *req.PushEnabled
	}
	if req.InAppEnabled != nil {
		prefs.InAppEnabled = *req.InAppEnabled
	}
	if req.EnabledTypes != nil {
		prefs.EnabledTypes = req.EnabledTypes
	}
	if req.MaxNotificationsPerHour != nil {
		prefs.MaxNotificationsPerHour = *req.MaxNotificationsPerHour
	}

	_, err = s.db.Exec(ctx, `
	UPDATE notification_preferences
	SET push_enabled = $2, in_app_enabled = $3, enabled_types = $4, max_notifications_per_hour = $5, updated_at = NOW()
	WHERE user_id = $1
	`, userID, prefs.PushEnabled, prefs.InAppEnabled, prefs.EnabledTypes, prefs.MaxNotificationsPerHour)
	if err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}

	return prefs, nil
}

// RegisterDevice adds or refreshes a device token. Tokens live inside the
// preferences row as a JSONB array.
func (s *NotificationService) RegisterDevice(ctx context.Context, userID uuid.UUID, req *notification.RegisterDeviceRequest) error {
	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return err
	}

	now := time.Now()
	updated := false
	for i := range prefs.DeviceTokens {
		if prefs.DeviceTokens[i].Token == req.Token {
			prefs.DeviceTokens[i].LastUsed = now
			updated = true
			break
		}
	}
	if !updated {
		prefs.DeviceTokens = append(prefs.DeviceTokens, notification.DeviceToken{
			Token:    req.Token,
			Platform: req.Platform,
			AddedAt:  now,
			LastUsed: now,
		})
	}

	_, err = s.db.Exec(ctx, `
	UPDATE notification_preferences SET device_tokens = $2, updated_at = NOW() WHERE user_id = $1
	`, userID, prefs.DeviceTokens)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}

	return nil
}

func (s *NotificationService) UnregisterDevice(ctx context.Context, userID uuid.UUID, token string) error {
	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return err
	}

	kept := prefs.DeviceTokens[:0]
	for _, t := range prefs.DeviceTokens {
		if t.Token != token {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(prefs.DeviceTokens) {
		return fmt.Errorf("device token not found")
	}

	_, err = s.db.Exec(ctx, `
	UPDATE notification_preferences SET device_tokens = $2, updated_at = NOW() WHERE user_id = $1
	`, userID, kept)
	if err != nil {
		return fmt.Errorf("failed to unregister device: %w", err)
	}

	return nil
}
