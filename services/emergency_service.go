package services

import (
	"context"
	"fmt"
	"log"
	"parklopediaAPI/internal/emergency"
	"parklopediaAPI/internal/notification"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EmergencyService struct {
	db            *pgxpool.Pool
	family        *FamilyService
	notifications *NotificationService
}

func NewEmergencyService(db *pgxpool.Pool) *EmergencyService {
	return &EmergencyService{db: db}
}

func (s *EmergencyService) SetFamilyService(f *FamilyService) {
	s.family = f
}

func (s *EmergencyService) SetNotificationService(n *NotificationService) {
	s.notifications = n
}

// TriggerSOS records the incident and alerts everyone sharing a family group
// with the user. Alerting is best-effort: the incident is saved even when no
// contact can be reached.
func (s *EmergencyService) TriggerSOS(ctx context.Context, userID uuid.UUID, req *emergency.SOSRequest) (*emergency.SOSResponse, error) {
	message := req.Message
	if message == "" {
		message = "Emergency SOS triggered"
	}

	incident := &emergency.Incident{
		ID:        uuid.New(),
		UserID:    userID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Message:   message,
		Status:    emergency.StatusOpen,
		CreatedAt: time.Now(),
	}

	_, err := s.db.Exec(ctx, `
	INSERT INTO emergency_incidents (id, user_id, latitude, longitude, message, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, incident.ID, incident.UserID, incident.Latitude, incident.Longitude, incident.Message, incident.Status, incident.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record incident: %w", err)
	}

	var senderName string
	err = s.db.QueryRow(ctx, `SELECT full_name FROM users WHERE id = $1`, userID).Scan(&senderName)
	if err != nil {
		senderName = "A family member"
	}

	alerted := 0
	if s.family != nil && s.notifications != nil {
		contacts, err := s.family.MemberUserIDs(ctx, userID)
		if err != nil {
			log.Printf("TriggerSOS: Failed to load family members for %s: %v", userID, err)
		} else {
			data := map[string]any{"incident_id": incident.ID.String()}
			if req.Latitude != nil && req.Longitude != nil {
				data["latitude"] = *req.Latitude
				data["longitude"] = *req.Longitude
			}

			for _, contactID := range contacts {
				notif, err := s.notifications.Notify(ctx, &notification.CreateNotificationRequest{
					UserID:   contactID,
					Type:     notification.TypeEmergencySOS,
					Priority: notification.PriorityUrgent,
					Title:    fmt.Sprintf("SOS from %s", senderName),
					Message:  message,
					Data:     data,
				})
				if err != nil {
					log.Printf("TriggerSOS: Failed to alert contact %s: %v", contactID, err)
					continue
				}
				// Contacts who disabled SOS notifications get a nil
				// notification back and do not count as alerted.
				if notif != nil {
					alerted++
				}
			}
		}
	}

	return &emergency.SOSResponse{Incident: incident, ContactsAlerted: alerted}, nil
}

func (s *EmergencyService) ResolveIncident(ctx context.Context, userID, incidentID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
	UPDATE emergency_incidents SET status = 'resolved' WHERE id = $1 AND user_id = $2 AND status = 'open'
	`, incidentID, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve incident: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("incident not found")
	}
	return nil
}
