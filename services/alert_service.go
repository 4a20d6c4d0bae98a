package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"parklopediaAPI/internal/alerts"
	"parklopediaAPI/internal/notification"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AlertService struct {
	db            *pgxpool.Pool
	notifications *NotificationService
}

func NewAlertService(db *pgxpool.Pool) *AlertService {
	return &AlertService{db: db}
}

func (s *AlertService) SetNotificationService(n *NotificationService) {
	s.notifications = n
}

func (s *AlertService) CreateAlert(ctx context.Context, userID uuid.UUID, req *alerts.CreateAlertRequest) (*alerts.VehicleAlert, error) {
	if !req.AlertType.Valid() {
		return nil, fmt.Errorf("invalid alert type: %s", req.AlertType)
	}
	if req.AlertType == alerts.AlertPriceDrop && req.ThresholdValue == nil {
		return nil, fmt.Errorf("price_drop alerts require a threshold_value")
	}

	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle id")
	}

	var exists bool
	err = s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM catalog_vehicles WHERE id = $1)`, vehicleID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check vehicle: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("vehicle not found")
	}

	alert := &alerts.VehicleAlert{
		ID:             uuid.New(),
		UserID:         userID,
		VehicleID:      vehicleID,
		AlertType:      req.AlertType,
		ThresholdValue: req.ThresholdValue,
		IsActive:       true,
		CreatedAt:      time.Now(),
	}

	_, err = s.db.Exec(ctx, `
	INSERT INTO vehicle_alerts (id, user_id, vehicle_id, alert_type, threshold_value, is_active, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, alert.ID, alert.UserID, alert.VehicleID, alert.AlertType, alert.ThresholdValue, alert.IsActive, alert.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	return alert, nil
}

func (s *AlertService) GetUserAlerts(ctx context.Context, userID uuid.UUID) ([]*alerts.VehicleAlert, error) {
	rows, err := s.db.Query(ctx, `
	SELECT id, user_id, vehicle_id, alert_type, threshold_value, is_active, last_triggered, created_at
	FROM vehicle_alerts
	WHERE user_id = $1 AND is_active = TRUE
	ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get alerts: %w", err)
	}
	defer rows.Close()

	list := []*alerts.VehicleAlert{}
	for rows.Next() {
		a := &alerts.VehicleAlert{}
		err := rows.Scan(&a.ID, &a.UserID, &a.VehicleID, &a.AlertType, &a.ThresholdValue, &a.IsActive, &a.LastTriggered, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		list = append(list, a)
	}

	return list, nil
}

// DeactivateAlert soft-deletes the alert. Rows stay around for history.
func (s *AlertService) DeactivateAlert(ctx context.Context, userID, alertID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
	UPDATE vehicle_alerts SET is_active = FALSE WHERE id = $1 AND user_id = $2
	`, alertID, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alert not found")
	}
	return nil
}

// Dispatch sweeps active alerts against the vehicle catalog. The request can
// narrow the sweep to one vehicle or one alert type; check_all covers
// everything and is what the hourly scheduler sends.
func (s *AlertService) Dispatch(ctx context.Context, req *alerts.DispatchRequest) (*alerts.DispatchResult, error) {
	if req.AlertType != nil && !req.AlertType.Valid() {
		return nil, fmt.Errorf("invalid alert type: %s", *req.AlertType)
	}

	query := `
	SELECT id, user_id, vehicle_id, alert_type, threshold_value, is_active, last_triggered, created_at
	FROM vehicle_alerts
	WHERE is_active = TRUE
	`
	args := []any{}
	if req.VehicleID != nil {
		vehicleID, err := uuid.Parse(*req.VehicleID)
		if err != nil {
			return nil, fmt.Errorf("invalid vehicle id")
		}
		args = append(args, vehicleID)
		query += fmt.Sprintf(" AND vehicle_id = $%d", len(args))
	}
	if req.AlertType != nil {
		args = append(args, *req.AlertType)
		query += fmt.Sprintf(" AND alert_type = $%d", len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", err)
	}

	pending := []*alerts.VehicleAlert{}
	for rows.Next() {
		a := &alerts.VehicleAlert{}
		err := rows.Scan(&a.ID, &a.UserID, &a.VehicleID, &a.AlertType, &a.ThresholdValue, &a.IsActive, &a.LastTriggered, &a.CreatedAt)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		pending = append(pending, a)
	}
	rows.Close()

	result := &alerts.DispatchResult{AlertsChecked: len(pending)}
	now := time.Now()
	vehicleCache := map[uuid.UUID]*alerts.CatalogVehicle{}

	for _, alert := range pending {
		vehicle, ok := vehicleCache[alert.VehicleID]
		if !ok {
			vehicle, err = s.getCatalogVehicle(ctx, alert.VehicleID)
			if err != nil {
				log.Printf("Dispatch: Failed to load vehicle %s: %v", alert.VehicleID, err)
				continue
			}
			vehicleCache[alert.VehicleID] = vehicle
		}

		fired, reason := alerts.EvaluateTrigger(alert, vehicle, now)
		if !fired {
			continue
		}
		result.TriggeredAlerts++

		// One-shot types would fire identically on every sweep, so the
		// first trigger retires them.
		if alert.AlertType.OneShot() {
			_, err = s.db.Exec(ctx, `
			UPDATE vehicle_alerts SET last_triggered = $2, is_active = FALSE WHERE id = $1
			`, alert.ID, now)
		} else {
			_, err = s.db.Exec(ctx, `
			UPDATE vehicle_alerts SET last_triggered = $2 WHERE id = $1
			`, alert.ID, now)
		}
		if err != nil {
			log.Printf("Dispatch: Failed to update alert %s: %v", alert.ID, err)
			continue
		}

		if s.notifications != nil {
			notif, err := s.notifications.Notify(ctx, &notification.CreateNotificationRequest{
				UserID:   alert.UserID,
				Type:     notification.TypeVehicleAlert,
				Priority: notification.PriorityHigh,
				Title:    fmt.Sprintf("%s %s", vehicle.Brand, vehicle.Model),
				Message:  reason,
				Data: map[string]any{
					"alert_id":   alert.ID.String(),
					"vehicle_id": alert.VehicleID.String(),
					"alert_type": alert.AlertType,
				},
			})
			if err != nil {
				log.Printf("Dispatch: Failed to notify user %s: %v", alert.UserID, err)
				continue
			}
			// A nil notification means preferences suppressed it.
			if notif != nil {
				result.NotificationsSent++
			}
		}
	}

	return result, nil
}

func (s *AlertService) getCatalogVehicle(ctx context.Context, vehicleID uuid.UUID) (*alerts.CatalogVehicle, error) {
	v := &alerts.CatalogVehicle{}
	err := s.db.QueryRow(ctx, `
	SELECT id, brand, model, status, launch_date
	FROM catalog_vehicles
	WHERE id = $1
	`, vehicleID).Scan(&v.ID, &v.Brand, &v.Model, &v.Status, &v.LaunchDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vehicle not found")
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	rows, err := s.db.Query(ctx, `
	SELECT id, variant_name, price_range_min, price_range_max, created_at
	FROM catalog_vehicle_variants
	WHERE vehicle_id = $1
	`, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		variant := alerts.Variant{}
		err := rows.Scan(&variant.ID, &variant.VariantName, &variant.PriceRangeMin, &variant.PriceRangeMax, &variant.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		v.Variants = append(v.Variants, variant)
	}

	return v, nil
}
