package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"parklopediaAPI/services"

	"github.com/google/uuid"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// SearchVehicles handles GET /catalog/vehicles with q, status and limit
// query parameters.
func (h *CatalogHandler) SearchVehicles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	params := r.URL.Query()
	limit, _ := strconv.Atoi(params.Get("limit"))

	vehicles, err := h.catalogService.SearchVehicles(ctx, params.Get("q"), params.Get("status"), limit)
	if err != nil {
		respondWithError(w, statusForError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, vehicles)
}

// CompareVehicles handles GET /catalog/compare?ids=a,b,c.
func (h *CatalogHandler) CompareVehicles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	raw := r.URL.Query().Get("ids")
	if raw == "" {
		respondWithError(w, http.StatusBadRequest, "ids is required")
		return
	}

	ids := []uuid.UUID{}
	for _, part := range strings.Split(raw, ",") {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid vehicle id")
			return
		}
		ids = append(ids, id)
	}

	vehicles, err := h.catalogService.CompareVehicles(ctx, ids)
	if err != nil {
		respondWithError(w, statusForError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, vehicles)
}
