package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"parklopediaAPI/internal/garage"
	"parklopediaAPI/internal/parking"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingReminderSweepRemindsOnce(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, userID := createTestUser(t, db)
	ctx := context.Background()

	garageSvc := NewGarageService(db)
	vehicle, err := garageSvc.AddVehicle(ctx, userID, &garage.AddVehicleRequest{
		Make:               "Tata",
		Model:              "Nexon",
		RegistrationNumber: fmt.Sprintf("KA01-%s", uuid.NewString()[:8]),
	})
	require.NoError(t, err)

	svc := NewParkingService(db)
	svc.SetNotificationService(NewNotificationService(db))

	start := time.Now().Add(2 * time.Hour)
	pass, err := svc.CreateBooking(ctx, userID, &parking.CreateBookingRequest{
		VehicleID:    vehicle.ID.String(),
		LocationName: "MG Road Parking",
		BookingDate:  start,
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.SendBookingReminders(ctx)
	require.NoError(t, err)

	var flagged bool
	err = db.QueryRow(ctx, `SELECT reminder_sent FROM parking_bookings WHERE id = $1`, pass.Booking.ID).Scan(&flagged)
	require.NoError(t, err)
	assert.True(t, flagged)

	countReminders := func() int {
		var n int
		err := db.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND type = 'booking_reminder'
		`, userID).Scan(&n)
		require.NoError(t, err)
		return n
	}

	assert.Equal(t, 1, countReminders())

	// The flagged booking drops out of the next sweep.
	_, err = svc.SendBookingReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, countReminders())
}

func TestBookingReminderSweepIgnoresDistantBookings(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, userID := createTestUser(t, db)
	ctx := context.Background()

	garageSvc := NewGarageService(db)
	vehicle, err := garageSvc.AddVehicle(ctx, userID, &garage.AddVehicleRequest{
		Make:               "Tata",
		Model:              "Nexon",
		RegistrationNumber: fmt.Sprintf("KA01-%s", uuid.NewString()[:8]),
	})
	require.NoError(t, err)

	svc := NewParkingService(db)
	svc.SetNotificationService(NewNotificationService(db))

	// Three days out, well past the 24-hour window.
	start := time.Now().Add(72 * time.Hour)
	pass, err := svc.CreateBooking(ctx, userID, &parking.CreateBookingRequest{
		VehicleID:    vehicle.ID.String(),
		LocationName: "Airport Parking",
		BookingDate:  start,
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.SendBookingReminders(ctx)
	require.NoError(t, err)

	var flagged bool
	err = db.QueryRow(ctx, `SELECT reminder_sent FROM parking_bookings WHERE id = $1`, pass.Booking.ID).Scan(&flagged)
	require.NoError(t, err)
	assert.False(t, flagged)
}
