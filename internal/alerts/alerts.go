package alerts

import (
	"time"

	"github.com/google/uuid"
)

type AlertType string

const (
	AlertPriceDrop    AlertType = "price_drop"
	AlertNewVariant   AlertType = "new_variant"
	AlertLaunchDate   AlertType = "launch_date"
	AlertDiscontinued AlertType = "discontinued"
)

func (a AlertType) Valid() bool {
	switch a {
	case AlertPriceDrop, AlertNewVariant, AlertLaunchDate, AlertDiscontinued:
		return true
	}
	return false
}

// OneShot reports whether the alert type tracks a frozen condition. Such
// alerts are deactivated after the first trigger so an unchanged condition
// cannot produce a duplicate notification on every sweep.
func (a AlertType) OneShot() bool {
	return a == AlertLaunchDate || a == AlertDiscontinued
}

// VehicleAlert is a user-created watch against a catalog vehicle. Alerts are
// deactivated on removal, never deleted; last_triggered is written only by
// the dispatcher.
type VehicleAlert struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	UserID         uuid.UUID  `json:"user_id" db:"user_id"`
	VehicleID      uuid.UUID  `json:"vehicle_id" db:"vehicle_id"`
	AlertType      AlertType  `json:"alert_type" db:"alert_type"`
	ThresholdValue *float64   `json:"threshold_value" db:"threshold_value"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	LastTriggered  *time.Time `json:"last_triggered" db:"last_triggered"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

type VehicleStatus string

const (
	StatusUpcoming     VehicleStatus = "upcoming"
	StatusAvailable    VehicleStatus = "available"
	StatusDiscontinued VehicleStatus = "discontinued"
)

// CatalogVehicle is a row from the shared vehicle encyclopedia, with its
// variants joined in.
type CatalogVehicle struct {
	ID         uuid.UUID     `json:"id" db:"id"`
	Brand      string        `json:"brand" db:"brand"`
	Model      string        `json:"model" db:"model"`
	Status     VehicleStatus `json:"status" db:"status"`
	LaunchDate *time.Time    `json:"launch_date" db:"launch_date"`
	Variants   []Variant     `json:"variants"`
}

type Variant struct {
	ID            uuid.UUID `json:"id" db:"id"`
	VariantName   string    `json:"variant_name" db:"variant_name"`
	PriceRangeMin float64   `json:"price_range_min" db:"price_range_min"`
	PriceRangeMax float64   `json:"price_range_max" db:"price_range_max"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type CreateAlertRequest struct {
	VehicleID      string    `json:"vehicle_id"`
	AlertType      AlertType `json:"alert_type"`
	ThresholdValue *float64  `json:"threshold_value,omitempty"`
}

type DispatchRequest struct {
	VehicleID *string    `json:"vehicle_id,omitempty"`
	AlertType *AlertType `json:"alert_type,omitempty"`
	CheckAll  bool       `json:"check_all,omitempty"`
}

type DispatchResult struct {
	TriggeredAlerts   int `json:"triggered_alerts"`
	NotificationsSent int `json:"notifications_sent"`
	AlertsChecked     int `json:"alerts_checked"`
}
