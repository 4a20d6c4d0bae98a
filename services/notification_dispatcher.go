package services

import (
	"context"
	"log"
	"parklopediaAPI/internal/notification"
	"sync"
	"time"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

// NotificationDispatcher moves created notifications out to devices on a small
// worker pool so HTTP handlers never block on FCM.
type NotificationDispatcher struct {
	service      *NotificationService
	pushProvider PushNotificationProvider
	workers      int
	jobQueue     chan *DispatchJob
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

type DispatchJob struct {
	Notification *notification.Notification
	Preferences  *notification.NotificationPreferences
}

func NewNotificationDispatcher(service *NotificationService) *NotificationDispatcher {
	dispatcher := &NotificationDispatcher{
		service:  service,
		workers:  5,
		jobQueue: make(chan *DispatchJob, 100),
		stopChan: make(chan struct{}),
	}

	dispatcher.startWorkers()

	// Old read notifications are pruned in the background.
	go dispatcher.cleanupLoop()

	return dispatcher
}

// SetPushProvider injects the real FCM client from main.go. Without one,
// notifications stay in-app only.
func (d *NotificationDispatcher) SetPushProvider(provider PushNotificationProvider) {
	d.pushProvider = provider
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.jobQueue:
			d.processJob(job)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) processJob(job *DispatchJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notif := job.Notification
	prefs := job.Preferences

	if prefs.PushEnabled && len(prefs.DeviceTokens) > 0 && d.pushProvider != nil {
		err := d.pushProvider.SendPush(ctx, prefs.DeviceTokens, notif.Title, notif.Message, notif.Data)
		if err != nil {
			log.Printf("Push failed for user %s: %v", notif.UserID, err)
			d.markAsFailed(ctx, notif.ID.String())
			return
		}
	}

	d.markAsSent(ctx, notif.ID.String())
}

// Dispatch queues a notification for delivery. Drops the job if the queue
// stays full for 5 seconds rather than blocking the caller forever.
func (d *NotificationDispatcher) Dispatch(notif *notification.Notification, prefs *notification.NotificationPreferences) {
	job := &DispatchJob{Notification: notif, Preferences: prefs}

	select {
	case d.jobQueue <- job:
	case <-time.After(5 * time.Second):
		log.Printf("Failed to queue notification %s: queue full", notif.ID)
	}
}

func (d *NotificationDispatcher) cleanupLoop() {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.performCleanup()
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) performCleanup() {
	ctx := context.Background()

	result, err := d.service.db.Exec(ctx, `
	DELETE FROM notifications
	WHERE is_read = TRUE AND read_at < NOW() - INTERVAL '90 days'
	`)
	if err != nil {
		log.Printf("Failed to cleanup old notifications: %v", err)
		return
	}

	if rowsAffected := result.RowsAffected(); rowsAffected > 0 {
		log.Printf("Cleaned up %d old read notifications", rowsAffected)
	}
}

func (d *NotificationDispatcher) markAsSent(ctx context.Context, notificationID string) {
	_, err := d.service.db.Exec(ctx, `
	UPDATE notifications SET status = 'sent', sent_at = NOW() WHERE id = $1
	`, notificationID)
	if err != nil {
		log.Printf("Failed to mark notification %s as sent: %v", notificationID, err)
	}
}

func (d *NotificationDispatcher) markAsFailed(ctx context.Context, notificationID string) {
	_, err := d.service.db.Exec(ctx, `
	UPDATE notifications SET status = 'failed' WHERE id = $1
	`, notificationID)
	if err != nil {
		log.Printf("Failed to mark notification %s as failed: %v", notificationID, err)
	}
}

// Stop drains the worker pool. Queued jobs that have not started are dropped.
func (d *NotificationDispatcher) Stop() {
	log.Println("Stopping notification dispatcher...")
	close(d.stopChan)
	d.wg.Wait()
	log.Println("Notification dispatcher stopped")
}

// MockPushProvider logs instead of sending. Used in tests and when FCM
// credentials are absent.
type MockPushProvider struct{}

func (m *MockPushProvider) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error {
	log.Printf("MOCK PUSH: Sending to %d devices: %s - %s", len(tokens), title, body)
	return nil
}
