package alerts

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func f64(v float64) *float64 { return &v }
func tp(t time.Time) *time.Time { return &t }

func testVehicle(variants ...Variant) *CatalogVehicle {
	return &CatalogVehicle{
		ID:       uuid.New(),
		Brand:    "Tata",
		Model:    "Nexon",
		Status:   StatusAvailable,
		Variants: variants,
	}
}

func TestPriceDropTriggersAtOrBelowThreshold(t *testing.T) {
	now := time.Now()
	vehicle := testVehicle(
		Variant{VariantName: "XM", PriceRangeMin: 900000},
		Variant{VariantName: "XZ", PriceRangeMin: 1200000},
	)

	alert := &VehicleAlert{AlertType: AlertPriceDrop, ThresholdValue: f64(900000)}
	fired, reason := EvaluateTrigger(alert, vehicle, now)
	assert.True(t, fired, "cheapest variant equal to threshold should fire")
	assert.Contains(t, reason, "Price dropped")

	alert = &VehicleAlert{AlertType: AlertPriceDrop, ThresholdValue: f64(899999)}
	fired, _ = EvaluateTrigger(alert, vehicle, now)
	assert.False(t, fired)
}

func TestPriceDropUsesCheapestVariant(t *testing.T) {
	vehicle := testVehicle(
		Variant{VariantName: "XZ", PriceRangeMin: 1200000},
		Variant{VariantName: "XM", PriceRangeMin: 850000},
	)

	alert := &VehicleAlert{AlertType: AlertPriceDrop, ThresholdValue: f64(900000)}
	fired, _ := EvaluateTrigger(alert, vehicle, time.Now())
	assert.True(t, fired)
}

func TestPriceDropNeedsThresholdAndVariants(t *testing.T) {
	now := time.Now()

	alert := &VehicleAlert{AlertType: AlertPriceDrop}
	fired, _ := EvaluateTrigger(alert, testVehicle(Variant{PriceRangeMin: 1}), now)
	assert.False(t, fired, "no threshold set")

	alert = &VehicleAlert{AlertType: AlertPriceDrop, ThresholdValue: f64(900000)}
	fired, _ = EvaluateTrigger(alert, testVehicle(), now)
	assert.False(t, fired, "no variants")
}

func TestNewVariantCountsOnlyAfterBaseline(t *testing.T) {
	now := time.Now()
	baseline := now.Add(-48 * time.Hour)

	vehicle := testVehicle(
		Variant{VariantName: "old", CreatedAt: now.Add(-72 * time.Hour)},
		Variant{VariantName: "new", CreatedAt: now.Add(-24 * time.Hour)},
	)

	alert := &VehicleAlert{AlertType: AlertNewVariant, LastTriggered: tp(baseline)}
	fired, reason := EvaluateTrigger(alert, vehicle, now)
	assert.True(t, fired)
	assert.Contains(t, reason, "1 new variant")
}

func TestNewVariantWithoutBaselineNeverFires(t *testing.T) {
	vehicle := testVehicle(Variant{VariantName: "new", CreatedAt: time.Now()})

	alert := &VehicleAlert{AlertType: AlertNewVariant}
	fired, _ := EvaluateTrigger(alert, vehicle, time.Now())
	assert.False(t, fired)
}

func TestLaunchDateFiresOnceReached(t *testing.T) {
	now := time.Now()

	past := testVehicle()
	past.LaunchDate = tp(now.Add(-time.Hour))
	fired, _ := EvaluateTrigger(&VehicleAlert{AlertType: AlertLaunchDate}, past, now)
	assert.True(t, fired)

	future := testVehicle()
	future.LaunchDate = tp(now.Add(time.Hour))
	fired, _ = EvaluateTrigger(&VehicleAlert{AlertType: AlertLaunchDate}, future, now)
	assert.False(t, fired)

	unknown := testVehicle()
	fired, _ = EvaluateTrigger(&VehicleAlert{AlertType: AlertLaunchDate}, unknown, now)
	assert.False(t, fired, "nil launch date")
}

func TestDiscontinuedFiresOnStatus(t *testing.T) {
	now := time.Now()

	gone := testVehicle()
	gone.Status = StatusDiscontinued
	fired, reason := EvaluateTrigger(&VehicleAlert{AlertType: AlertDiscontinued}, gone, now)
	assert.True(t, fired)
	assert.Equal(t, "Vehicle has been discontinued", reason)

	active := testVehicle()
	fired, _ = EvaluateTrigger(&VehicleAlert{AlertType: AlertDiscontinued}, active, now)
	assert.False(t, fired)
}

func TestOneShotClassification(t *testing.T) {
	assert.True(t, AlertLaunchDate.OneShot())
	assert.True(t, AlertDiscontinued.OneShot())
	assert.False(t, AlertPriceDrop.OneShot())
	assert.False(t, AlertNewVariant.OneShot())
}

func TestAlertTypeValid(t *testing.T) {
	assert.True(t, AlertPriceDrop.Valid())
	assert.False(t, AlertType("recall").Valid())
}
