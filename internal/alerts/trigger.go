package alerts

import (
	"fmt"
	"time"
)

// EvaluateTrigger decides whether an alert fires against the current catalog
// snapshot and returns a human-readable reason for the notification body.
//
// A never-triggered new_variant alert has no baseline timestamp to compare
// variant creation against, so it cannot fire until last_triggered is set.
// This matches the behaviour of the original system and is kept as-is.
func EvaluateTrigger(alert *VehicleAlert, vehicle *CatalogVehicle, now time.Time) (bool, string) {
	switch alert.AlertType {
	case AlertPriceDrop:
		if alert.ThresholdValue == nil || len(vehicle.Variants) == 0 {
			return false, ""
		}
		minPrice := vehicle.Variants[0].PriceRangeMin
		for _, v := range vehicle.Variants[1:] {
			if v.PriceRangeMin < minPrice {
				minPrice = v.PriceRangeMin
			}
		}
		if minPrice <= *alert.ThresholdValue {
			return true, fmt.Sprintf("Price dropped to ₹%.0f (below ₹%.0f)", minPrice, *alert.ThresholdValue)
		}

	case AlertNewVariant:
		if alert.LastTriggered == nil {
			return false, ""
		}
		newCount := 0
		for _, v := range vehicle.Variants {
			if v.CreatedAt.After(*alert.LastTriggered) {
				newCount++
			}
		}
		if newCount > 0 {
			return true, fmt.Sprintf("%d new variant(s) added", newCount)
		}

	case AlertLaunchDate:
		if vehicle.LaunchDate != nil && !vehicle.LaunchDate.After(now) {
			return true, fmt.Sprintf("Vehicle launched on %s", vehicle.LaunchDate.Format("2006-01-02"))
		}

	case AlertDiscontinued:
		if vehicle.Status == StatusDiscontinued {
			return true, "Vehicle has been discontinued"
		}
	}

	return false, ""
}
