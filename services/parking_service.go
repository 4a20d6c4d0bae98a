package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"parklopediaAPI/internal/notification"
	"parklopediaAPI/internal/parking"
	"parklopediaAPI/internal/rewards"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skip2/go-qrcode"
)

type ParkingService struct {
	db            *pgxpool.Pool
	rewards       *RewardsService
	notifications *NotificationService
}

func NewParkingService(db *pgxpool.Pool) *ParkingService {
	return &ParkingService{db: db}
}

func (s *ParkingService) SetRewardsService(r *RewardsService) {
	s.rewards = r
}

func (s *ParkingService) SetNotificationService(n *NotificationService) {
	s.notifications = n
}

func (s *ParkingService) CreateBooking(ctx context.Context, userID uuid.UUID, req *parking.CreateBookingRequest) (*parking.BookingPass, error) {
	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle id")
	}
	if req.LocationName == "" {
		return nil, fmt.Errorf("location_name is required")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, fmt.Errorf("end_time must be after start_time")
	}

	var owned bool
	err = s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM vehicles WHERE id = $1 AND user_id = $2)`, vehicleID, userID).Scan(&owned)
	if err != nil {
		return nil, fmt.Errorf("failed to check vehicle: %w", err)
	}
	if !owned {
		return nil, fmt.Errorf("vehicle not found")
	}

	bookingType := req.BookingType
	if bookingType == "" {
		bookingType = parking.TypeParking
	}

	b := &parking.Booking{
		ID:           uuid.New(),
		UserID:       userID,
		VehicleID:    vehicleID,
		BookingType:  bookingType,
		LocationName: req.LocationName,
		BookingDate:  req.BookingDate,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Status:       parking.StatusConfirmed,
		TotalAmount:  req.TotalAmount,
		CreatedAt:    time.Now(),
	}

	_, err = s.db.Exec(ctx, `
	INSERT INTO parking_bookings (id, user_id, vehicle_id, booking_type, location_name, booking_date, start_time, end_time, status, total_amount, reminder_sent, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE, $11)
	`, b.ID, b.UserID, b.VehicleID, b.BookingType, b.LocationName, b.BookingDate, b.StartTime, b.EndTime, b.Status, b.TotalAmount, b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	qr, err := s.generatePass(b)
	if err != nil {
		return nil, err
	}

	if s.rewards != nil {
		s.rewards.RecordAction(ctx, userID, rewards.ActionBookingMade, rewards.PointsBookingMade, map[string]any{
			"booking_id": b.ID.String(),
		})
	}

	if s.notifications != nil {
		s.notifications.Notify(ctx, &notification.CreateNotificationRequest{
			UserID:   userID,
			Type:     notification.TypeBookingConfirmation,
			Priority: notification.PriorityNormal,
			Title:    "Booking confirmed",
			Message:  fmt.Sprintf("Your %s booking at %s is confirmed.", b.BookingType, b.LocationName),
			Data:     map[string]any{"booking_id": b.ID.String()},
		})
	}

	return &parking.BookingPass{Booking: b, QRCode: qr}, nil
}

// generatePass encodes the booking reference as a QR code for gate scanners.
func (s *ParkingService) generatePass(b *parking.Booking) ([]byte, error) {
	content := fmt.Sprintf("PARKPASS:%s:%s:%d", b.ID, b.VehicleID, b.StartTime.Unix())
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking pass: %w", err)
	}
	return png, nil
}

func (s *ParkingService) GetBookings(ctx context.Context, userID uuid.UUID) ([]*parking.Booking, error) {
	rows, err := s.db.Query(ctx, `
	SELECT id, user_id, vehicle_id, booking_type, location_name, booking_date, start_time, end_time, status, total_amount, created_at
	FROM parking_bookings
	WHERE user_id = $1
	ORDER BY start_time DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	defer rows.Close()

	list := []*parking.Booking{}
	for rows.Next() {
		b := &parking.Booking{}
		err := rows.Scan(&b.ID, &b.UserID, &b.VehicleID, &b.BookingType, &b.LocationName, &b.BookingDate, &b.StartTime, &b.EndTime, &b.Status, &b.TotalAmount, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		list = append(list, b)
	}

	return list, nil
}

func (s *ParkingService) GetBookingPass(ctx context.Context, userID, bookingID uuid.UUID) (*parking.BookingPass, error) {
	b := &parking.Booking{}
	err := s.db.QueryRow(ctx, `
	SELECT id, user_id, vehicle_id, booking_type, location_name, booking_date, start_time, end_time, status, total_amount, created_at
	FROM parking_bookings
	WHERE id = $1 AND user_id = $2
	`, bookingID, userID).Scan(&b.ID, &b.UserID, &b.VehicleID, &b.BookingType, &b.LocationName, &b.BookingDate, &b.StartTime, &b.EndTime, &b.Status, &b.TotalAmount, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("booking not found")
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if b.Status == parking.StatusCancelled {
		return nil, fmt.Errorf("booking is cancelled")
	}

	qr, err := s.generatePass(b)
	if err != nil {
		return nil, err
	}

	return &parking.BookingPass{Booking: b, QRCode: qr}, nil
}

// SendBookingReminders notifies users about confirmed bookings starting
// within the next 24 hours. The reminder_sent flag keeps each booking to a
// single reminder across repeated sweeps.
func (s *ParkingService) SendBookingReminders(ctx context.Context) (*parking.ReminderSweepResult, error) {
	rows, err := s.db.Query(ctx, `
	SELECT id, user_id, booking_type, location_name, start_time
	FROM parking_bookings
	WHERE status = 'CONFIRMED'
	  AND reminder_sent = FALSE
	  AND start_time > NOW()
	  AND start_time <= NOW() + INTERVAL '24 hours'
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming bookings: %w", err)
	}

	type upcoming struct {
		id           uuid.UUID
		userID       uuid.UUID
		bookingType  parking.BookingType
		locationName string
		startTime    time.Time
	}

	found := []upcoming{}
	for rows.Next() {
		u := upcoming{}
		if err := rows.Scan(&u.id, &u.userID, &u.bookingType, &u.locationName, &u.startTime); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan upcoming booking: %w", err)
		}
		found = append(found, u)
	}
	rows.Close()

	result := &parking.ReminderSweepResult{BookingsFound: len(found)}

	for _, u := range found {
		var notif *notification.Notification
		if s.notifications != nil {
			notif, err = s.notifications.Notify(ctx, &notification.CreateNotificationRequest{
				UserID:   u.userID,
				Type:     notification.TypeBookingReminder,
				Priority: notification.PriorityNormal,
				Title:    "Upcoming booking",
				Message:  fmt.Sprintf("Your %s booking at %s starts at %s.", u.bookingType, u.locationName, u.startTime.Format("15:04, 02 Jan")),
				Data:     map[string]any{"booking_id": u.id.String()},
			})
			if err != nil {
				log.Printf("SendBookingReminders: Failed to notify user %s: %v", u.userID, err)
				continue
			}
		}

		// Flag only after a successful notification so a failed send
		// retries on the next sweep.
		_, err = s.db.Exec(ctx, `UPDATE parking_bookings SET reminder_sent = TRUE WHERE id = $1`, u.id)
		if err != nil {
			log.Printf("SendBookingReminders: Failed to flag booking %s: %v", u.id, err)
			continue
		}
		if notif != nil {
			result.RemindersSent++
		}
	}

	return result, nil
}

func (s *ParkingService) CancelBooking(ctx context.Context, userID, bookingID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
	UPDATE parking_bookings
	SET status = 'CANCELLED'
	WHERE id = $1 AND user_id = $2 AND status IN ('PENDING', 'CONFIRMED')
	`, bookingID, userID)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("booking not found or not cancellable")
	}
	return nil
}
