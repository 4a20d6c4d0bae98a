package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareVehiclesRequiresIDs(t *testing.T) {
	h := NewCatalogHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/compare", nil)
	rec := httptest.NewRecorder()

	h.CompareVehicles(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ids is required")
}

func TestCompareVehiclesRejectsMalformedIDs(t *testing.T) {
	h := NewCatalogHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/compare?ids=not-a-uuid", nil)
	rec := httptest.NewRecorder()

	h.CompareVehicles(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid vehicle id")
}
