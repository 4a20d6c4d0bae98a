package parking

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCompleted BookingStatus = "COMPLETED"
	StatusCancelled BookingStatus = "CANCELLED"
)

type BookingType string

const (
	TypeParking BookingType = "parking"
	TypeService BookingType = "service"
)

type Booking struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	UserID       uuid.UUID     `json:"user_id" db:"user_id"`
	VehicleID    uuid.UUID     `json:"vehicle_id" db:"vehicle_id"`
	BookingType  BookingType   `json:"booking_type" db:"booking_type"`
	LocationName string        `json:"location_name" db:"location_name"`
	BookingDate  time.Time     `json:"booking_date" db:"booking_date"`
	StartTime    time.Time     `json:"start_time" db:"start_time"`
	EndTime      time.Time     `json:"end_time" db:"end_time"`
	Status       BookingStatus `json:"status" db:"status"`
	TotalAmount  float64       `json:"total_amount" db:"total_amount"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}

type CreateBookingRequest struct {
	VehicleID    string      `json:"vehicle_id"`
	BookingType  BookingType `json:"booking_type"`
	LocationName string      `json:"location_name"`
	BookingDate  time.Time   `json:"booking_date"`
	StartTime    time.Time   `json:"start_time"`
	EndTime      time.Time   `json:"end_time"`
	TotalAmount  float64     `json:"total_amount"`
}

// BookingPass is a booking plus its gate QR code (PNG, base64 in JSON).
type BookingPass struct {
	Booking *Booking `json:"booking"`
	QRCode  []byte   `json:"qr_code"`
}

// ReminderSweepResult summarizes one run of the upcoming-booking sweep.
type ReminderSweepResult struct {
	BookingsFound int `json:"bookings_found"`
	RemindersSent int `json:"reminders_sent"`
}
