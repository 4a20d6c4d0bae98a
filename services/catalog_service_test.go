package services

import (
	"context"
	"testing"

	"parklopediaAPI/internal/alerts"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertCatalogVehicle(t *testing.T, db *pgxpool.Pool, brand, model string, status alerts.VehicleStatus) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(context.Background(), `
	INSERT INTO catalog_vehicles (id, brand, model, status, launch_date)
	VALUES ($1, $2, $3, $4, NULL)
	`, id, brand, model, status)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Exec(context.Background(), `DELETE FROM catalog_vehicles WHERE id = $1`, id)
	})

	return id
}

func TestSearchVehiclesMatchesBrandAndModel(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	tharID := insertCatalogVehicle(t, db, "Mahindra", "Thar", alerts.StatusAvailable)
	xuvID := insertCatalogVehicle(t, db, "Mahindra", "XUV700", alerts.StatusAvailable)

	svc := NewCatalogService(db)
	ctx := context.Background()

	results, err := svc.SearchVehicles(ctx, "mahindra", "", 50)
	require.NoError(t, err)

	found := map[uuid.UUID]bool{}
	for _, v := range results {
		found[v.ID] = true
	}
	assert.True(t, found[tharID], "brand match is case-insensitive")
	assert.True(t, found[xuvID])

	results, err = svc.SearchVehicles(ctx, "XUV7", "", 50)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, xuvID, results[0].ID)

	_, err = svc.SearchVehicles(ctx, "", "recalled", 50)
	assert.ErrorContains(t, err, "invalid status")
}

func TestCompareVehiclesKeepsOrderAndVariants(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	firstID := insertCatalogVehicle(t, db, "Tata", "Punch", alerts.StatusAvailable)
	secondID := insertCatalogVehicle(t, db, "Hyundai", "Exter", alerts.StatusAvailable)
	ctx := context.Background()

	_, err := db.Exec(ctx, `
	INSERT INTO catalog_vehicle_variants (id, vehicle_id, variant_name, price_range_min, price_range_max, created_at)
	VALUES ($1, $2, 'Pure', 600000, 650000, NOW())
	`, uuid.New(), firstID)
	require.NoError(t, err)

	svc := NewCatalogService(db)

	compared, err := svc.CompareVehicles(ctx, []uuid.UUID{secondID, firstID})
	require.NoError(t, err)
	require.Len(t, compared, 2)
	assert.Equal(t, secondID, compared[0].ID, "requested order is preserved")
	assert.Equal(t, firstID, compared[1].ID)
	assert.Len(t, compared[1].Variants, 1)

	_, err = svc.CompareVehicles(ctx, []uuid.UUID{firstID})
	assert.ErrorContains(t, err, "2 or 3 vehicle ids")

	_, err = svc.CompareVehicles(ctx, []uuid.UUID{firstID, uuid.New()})
	assert.ErrorContains(t, err, "vehicle not found")
}
