package services

import (
	"context"
	"fmt"
	"parklopediaAPI/internal/alerts"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogService serves the shared vehicle encyclopedia: search for the
// browse screen and side-by-side comparison. It only ever reads.
type CatalogService struct {
	db *pgxpool.Pool
}

func NewCatalogService(db *pgxpool.Pool) *CatalogService {
	return &CatalogService{db: db}
}

// SearchVehicles matches the query against brand and model, case-insensitive.
// An empty query lists the catalog; status narrows to one lifecycle stage.
func (s *CatalogService) SearchVehicles(ctx context.Context, query, status string, limit int) ([]*alerts.CatalogVehicle, error) {
	if status != "" && !validStatus(status) {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	rows, err := s.db.Query(ctx, `
	SELECT id, brand, model, status, launch_date
	FROM catalog_vehicles
	WHERE ($1 = '' OR brand ILIKE '%' || $1 || '%' OR model ILIKE '%' || $1 || '%')
	  AND ($2 = '' OR status = $2)
	ORDER BY brand, model
	LIMIT $3
	`, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search vehicles: %w", err)
	}
	defer rows.Close()

	list := []*alerts.CatalogVehicle{}
	for rows.Next() {
		v := &alerts.CatalogVehicle{}
		err := rows.Scan(&v.ID, &v.Brand, &v.Model, &v.Status, &v.LaunchDate)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		list = append(list, v)
	}

	return list, nil
}

// CompareVehicles loads two or three catalog vehicles with their variants,
// preserving the requested order.
func (s *CatalogService) CompareVehicles(ctx context.Context, ids []uuid.UUID) ([]*alerts.CatalogVehicle, error) {
	if len(ids) < 2 || len(ids) > 3 {
		return nil, fmt.Errorf("invalid comparison: 2 or 3 vehicle ids required")
	}

	rows, err := s.db.Query(ctx, `
	SELECT id, brand, model, status, launch_date
	FROM catalog_vehicles
	WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load vehicles: %w", err)
	}

	byID := map[uuid.UUID]*alerts.CatalogVehicle{}
	for rows.Next() {
		v := &alerts.CatalogVehicle{}
		err := rows.Scan(&v.ID, &v.Brand, &v.Model, &v.Status, &v.LaunchDate)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		byID[v.ID] = v
	}
	rows.Close()

	if len(byID) != len(ids) {
		return nil, fmt.Errorf("vehicle not found")
	}

	variantRows, err := s.db.Query(ctx, `
	SELECT vehicle_id, id, variant_name, price_range_min, price_range_max, created_at
	FROM catalog_vehicle_variants
	WHERE vehicle_id = ANY($1)
	ORDER BY price_range_min
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}
	defer variantRows.Close()

	for variantRows.Next() {
		var vehicleID uuid.UUID
		variant := alerts.Variant{}
		err := variantRows.Scan(&vehicleID, &variant.ID, &variant.VariantName, &variant.PriceRangeMin, &variant.PriceRangeMax, &variant.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		if v, ok := byID[vehicleID]; ok {
			v.Variants = append(v.Variants, variant)
		}
	}

	ordered := make([]*alerts.CatalogVehicle, 0, len(ids))
	for _, id := range ids {
		ordered = append(ordered, byID[id])
	}

	return ordered, nil
}

func validStatus(status string) bool {
	switch alerts.VehicleStatus(status) {
	case alerts.StatusUpcoming, alerts.StatusAvailable, alerts.StatusDiscontinued:
		return true
	}
	return false
}
