package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"parklopediaAPI/internal/garage"
	"parklopediaAPI/internal/notification"
	"parklopediaAPI/internal/rewards"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentExpiryWindow is how far ahead the expiry sweep looks.
const DocumentExpiryWindow = 15 * 24 * time.Hour

type GarageService struct {
	db            *pgxpool.Pool
	rewards       *RewardsService
	notifications *NotificationService
}

func NewGarageService(db *pgxpool.Pool) *GarageService {
	return &GarageService{db: db}
}

func (s *GarageService) SetRewardsService(r *RewardsService) {
	s.rewards = r
}

func (s *GarageService) SetNotificationService(n *NotificationService) {
	s.notifications = n
}

func (s *GarageService) AddVehicle(ctx context.Context, userID uuid.UUID, req *garage.AddVehicleRequest) (*garage.Vehicle, error) {
	if req.Make == "" || req.Model == "" || req.RegistrationNumber == "" {
		return nil, fmt.Errorf("make, model and registration_number are required")
	}

	v := &garage.Vehicle{
		ID:                 uuid.New(),
		UserID:             userID,
		VehicleType:        req.VehicleType,
		Make:               req.Make,
		Model:              req.Model,
		Variant:            req.Variant,
		Year:               req.Year,
		RegistrationNumber: req.RegistrationNumber,
		FuelType:           req.FuelType,
		Color:              req.Color,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}

	_, err := s.db.Exec(ctx, `
	INSERT INTO vehicles (id, user_id, vehicle_type, make, model, variant, year, registration_number, fuel_type, color, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, v.ID, v.UserID, v.VehicleType, v.Make, v.Model, v.Variant, v.Year, v.RegistrationNumber, v.FuelType, v.Color, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add vehicle: %w", err)
	}

	if s.rewards != nil {
		s.rewards.RecordAction(ctx, userID, rewards.ActionVehicleAdded, rewards.PointsVehicleAdded, map[string]any{
			"vehicle_id": v.ID.String(),
		})
	}

	return v, nil
}

func (s *GarageService) GetVehicles(ctx context.Context, userID uuid.UUID) ([]*garage.Vehicle, error) {
	rows, err := s.db.Query(ctx, `
	SELECT id, user_id, vehicle_type, make, model, variant, year, registration_number, fuel_type, color, created_at, updated_at
	FROM vehicles
	WHERE user_id = $1
	ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicles: %w", err)
	}
	defer rows.Close()

	list := []*garage.Vehicle{}
	for rows.Next() {
		v := &garage.Vehicle{}
		err := rows.Scan(&v.ID, &v.UserID, &v.VehicleType, &v.Make, &v.Model, &v.Variant, &v.Year, &v.RegistrationNumber, &v.FuelType, &v.Color, &v.CreatedAt, &v.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		list = append(list, v)
	}

	return list, nil
}

func (s *GarageService) GetVehicle(ctx context.Context, userID, vehicleID uuid.UUID) (*garage.Vehicle, error) {
	v := &garage.Vehicle{}
	err := s.db.QueryRow(ctx, `
	SELECT id, user_id, vehicle_type, make, model, variant, year, registration_number, fuel_type, color, created_at, updated_at
	FROM vehicles
	WHERE id = $1 AND user_id = $2
	`, vehicleID, userID).Scan(&v.ID, &v.UserID, &v.VehicleType, &v.Make, &v.Model, &v.Variant, &v.Year, &v.RegistrationNumber, &v.FuelType, &v.Color, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vehicle not found")
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return v, nil
}

func (s *GarageService) DeleteVehicle(ctx context.Context, userID, vehicleID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM vehicles WHERE id = $1 AND user_id = $2`, vehicleID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("vehicle not found")
	}
	return nil
}

func (s *GarageService) AddDocument(ctx context.Context, userID uuid.UUID, req *garage.AddDocumentRequest) (*garage.Document, error) {
	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle id")
	}

	// Ownership check keeps users from attaching documents to someone
	// else's vehicle.
	if _, err := s.GetVehicle(ctx, userID, vehicleID); err != nil {
		return nil, err
	}

	if req.ExpiryDate.Before(req.IssueDate) {
		return nil, fmt.Errorf("expiry_date cannot be before issue_date")
	}

	d := &garage.Document{
		ID:             uuid.New(),
		VehicleID:      vehicleID,
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		IssueDate:      req.IssueDate,
		ExpiryDate:     req.ExpiryDate,
		FileURL:        req.FileURL,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	_, err = s.db.Exec(ctx, `
	INSERT INTO documents (id, vehicle_id, document_type, document_number, issue_date, expiry_date, file_url, reminder_sent, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, $9)
	`, d.ID, d.VehicleID, d.DocumentType, d.DocumentNumber, d.IssueDate, d.ExpiryDate, d.FileURL, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add document: %w", err)
	}

	if s.rewards != nil {
		s.rewards.RecordAction(ctx, userID, rewards.ActionDocumentUploaded, rewards.PointsDocumentUploaded, map[string]any{
			"document_id": d.ID.String(),
		})
	}

	return d, nil
}

func (s *GarageService) GetDocuments(ctx context.Context, userID, vehicleID uuid.UUID) ([]*garage.Document, error) {
	if _, err := s.GetVehicle(ctx, userID, vehicleID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
	SELECT id, vehicle_id, document_type, document_number, issue_date, expiry_date, file_url, reminder_sent, created_at, updated_at
	FROM documents
	WHERE vehicle_id = $1
	ORDER BY expiry_date ASC
	`, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents: %w", err)
	}
	defer rows.Close()

	list := []*garage.Document{}
	for rows.Next() {
		d := &garage.Document{}
		err := rows.Scan(&d.ID, &d.VehicleID, &d.DocumentType, &d.DocumentNumber, &d.IssueDate, &d.ExpiryDate, &d.FileURL, &d.ReminderSent, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		list = append(list, d)
	}

	return list, nil
}

func (s *GarageService) DeleteDocument(ctx context.Context, userID, documentID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
	DELETE FROM documents d
	USING vehicles v
	WHERE d.id = $1 AND d.vehicle_id = v.id AND v.user_id = $2
	`, documentID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document not found")
	}
	return nil
}

// CheckDocumentExpiry finds documents expiring within the next 15 days that
// have not been reminded about and notifies their owners. The reminder_sent
// flag keeps each document to a single reminder; it resets when the user
// uploads a renewed document.
func (s *GarageService) CheckDocumentExpiry(ctx context.Context) (*garage.ExpirySweepResult, error) {
	deadline := time.Now().Add(DocumentExpiryWindow)

	rows, err := s.db.Query(ctx, `
	SELECT d.id, d.document_type, d.document_number, d.expiry_date, v.user_id, v.make, v.model, v.registration_number
	FROM documents d
	JOIN vehicles v ON d.vehicle_id = v.id
	WHERE d.reminder_sent = FALSE
	  AND d.expiry_date <= $1
	  AND d.expiry_date >= NOW()
	`, deadline)
	if err != nil {
		return nil, fmt.Errorf("failed to query expiring documents: %w", err)
	}

	type expiring struct {
		docID      uuid.UUID
		docType    garage.DocumentType
		docNumber  string
		expiryDate time.Time
		userID     uuid.UUID
		make       string
		model      string
		regNumber  string
	}

	found := []expiring{}
	for rows.Next() {
		e := expiring{}
		err := rows.Scan(&e.docID, &e.docType, &e.docNumber, &e.expiryDate, &e.userID, &e.make, &e.model, &e.regNumber)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expiring document: %w", err)
		}
		found = append(found, e)
	}
	rows.Close()

	result := &garage.ExpirySweepResult{DocumentsFound: len(found)}

	for _, e := range found {
		daysLeft := int(time.Until(e.expiryDate).Hours() / 24)

		var notif *notification.Notification
		if s.notifications != nil {
			notif, err = s.notifications.Notify(ctx, &notification.CreateNotificationRequest{
				UserID:   e.userID,
				Type:     notification.TypeDocumentExpiry,
				Priority: notification.PriorityHigh,
				Title:    fmt.Sprintf("%s expiring soon", e.docType),
				Message:  fmt.Sprintf("%s for %s %s (%s) expires in %d day(s).", e.docType, e.make, e.model, e.regNumber, daysLeft),
				Data: map[string]any{
					"document_id": e.docID.String(),
					"expiry_date": e.expiryDate.Format("2006-01-02"),
				},
			})
			if err != nil {
				log.Printf("CheckDocumentExpiry: Failed to notify user %s: %v", e.userID, err)
				continue
			}
		}

		// Flag only after a successful notification so a failed send
		// retries on the next sweep. Preference-suppressed reminders
		// (nil notification) still flag, but do not count as sent.
		_, err = s.db.Exec(ctx, `UPDATE documents SET reminder_sent = TRUE, updated_at = NOW() WHERE id = $1`, e.docID)
		if err != nil {
			log.Printf("CheckDocumentExpiry: Failed to flag document %s: %v", e.docID, err)
			continue
		}
		if notif != nil {
			result.NotificationsSent++
		}
	}

	return result, nil
}
