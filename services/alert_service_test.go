package services

import (
	"context"
	"testing"
	"time"

	"parklopediaAPI/internal/alerts"
	"parklopediaAPI/internal/notification"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createCatalogVehicle(t *testing.T, db *pgxpool.Pool, status alerts.VehicleStatus) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(context.Background(), `
	INSERT INTO catalog_vehicles (id, brand, model, status, launch_date)
	VALUES ($1, 'Tata', 'Nexon', $2, NULL)
	`, id, status)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Exec(context.Background(), `DELETE FROM catalog_vehicles WHERE id = $1`, id)
	})

	return id
}

func TestDispatchDeactivatesOneShotAlerts(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, userID := createTestUser(t, db)
	vehicleID := createCatalogVehicle(t, db, alerts.StatusDiscontinued)

	svc := NewAlertService(db)
	ctx := context.Background()

	vehicleIDStr := vehicleID.String()
	alert, err := svc.CreateAlert(ctx, userID, &alerts.CreateAlertRequest{
		VehicleID: vehicleIDStr,
		AlertType: alerts.AlertDiscontinued,
	})
	require.NoError(t, err)

	result, err := svc.Dispatch(ctx, &alerts.DispatchRequest{VehicleID: &vehicleIDStr})
	require.NoError(t, err)
	assert.Equal(t, 1, result.AlertsChecked)
	assert.Equal(t, 1, result.TriggeredAlerts)

	var isActive bool
	var lastTriggered *time.Time
	err = db.QueryRow(ctx, `SELECT is_active, last_triggered FROM vehicle_alerts WHERE id = $1`, alert.ID).Scan(&isActive, &lastTriggered)
	require.NoError(t, err)
	assert.False(t, isActive, "a fired discontinued alert must retire itself")
	assert.NotNil(t, lastTriggered)

	// The retired alert drops out of the next sweep entirely.
	again, err := svc.Dispatch(ctx, &alerts.DispatchRequest{VehicleID: &vehicleIDStr})
	require.NoError(t, err)
	assert.Equal(t, 0, again.AlertsChecked)
	assert.Equal(t, 0, again.TriggeredAlerts)
}

func TestDispatchLeavesRecurringAlertsActive(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, userID := createTestUser(t, db)
	vehicleID := createCatalogVehicle(t, db, alerts.StatusAvailable)
	ctx := context.Background()

	_, err := db.Exec(ctx, `
	INSERT INTO catalog_vehicle_variants (id, vehicle_id, variant_name, price_range_min, price_range_max, created_at)
	VALUES ($1, $2, 'XM', 800000, 900000, NOW())
	`, uuid.New(), vehicleID)
	require.NoError(t, err)

	svc := NewAlertService(db)

	vehicleIDStr := vehicleID.String()
	threshold := 850000.0
	alert, err := svc.CreateAlert(ctx, userID, &alerts.CreateAlertRequest{
		VehicleID:      vehicleIDStr,
		AlertType:      alerts.AlertPriceDrop,
		ThresholdValue: &threshold,
	})
	require.NoError(t, err)

	result, err := svc.Dispatch(ctx, &alerts.DispatchRequest{VehicleID: &vehicleIDStr})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TriggeredAlerts)

	var isActive bool
	err = db.QueryRow(ctx, `SELECT is_active FROM vehicle_alerts WHERE id = $1`, alert.ID).Scan(&isActive)
	require.NoError(t, err)
	assert.True(t, isActive, "price_drop alerts keep watching after firing")
}

func TestDispatchDoesNotCountSuppressedNotifications(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, userID := createTestUser(t, db)
	vehicleID := createCatalogVehicle(t, db, alerts.StatusDiscontinued)
	ctx := context.Background()

	ns := NewNotificationService(db)
	_, err := ns.UpdatePreferences(ctx, userID, &notification.UpdatePreferencesRequest{
		EnabledTypes: map[string]bool{string(notification.TypeVehicleAlert): false},
	})
	require.NoError(t, err)

	svc := NewAlertService(db)
	svc.SetNotificationService(ns)

	vehicleIDStr := vehicleID.String()
	_, err = svc.CreateAlert(ctx, userID, &alerts.CreateAlertRequest{
		VehicleID: vehicleIDStr,
		AlertType: alerts.AlertDiscontinued,
	})
	require.NoError(t, err)

	result, err := svc.Dispatch(ctx, &alerts.DispatchRequest{VehicleID: &vehicleIDStr})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TriggeredAlerts)
	assert.Equal(t, 0, result.NotificationsSent, "a preference-suppressed notification is not a sent one")
}

func TestCreateAlertValidation(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, userID := createTestUser(t, db)
	svc := NewAlertService(db)
	ctx := context.Background()

	_, err := svc.CreateAlert(ctx, userID, &alerts.CreateAlertRequest{
		VehicleID: uuid.New().String(),
		AlertType: "recall",
	})
	assert.ErrorContains(t, err, "invalid alert type")

	_, err = svc.CreateAlert(ctx, userID, &alerts.CreateAlertRequest{
		VehicleID: uuid.New().String(),
		AlertType: alerts.AlertPriceDrop,
	})
	assert.ErrorContains(t, err, "threshold_value")

	_, err = svc.CreateAlert(ctx, userID, &alerts.CreateAlertRequest{
		VehicleID: uuid.New().String(),
		AlertType: alerts.AlertDiscontinued,
	})
	assert.ErrorContains(t, err, "vehicle not found")
}
