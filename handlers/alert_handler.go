package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"parklopediaAPI/internal/alerts"
	"parklopediaAPI/middleware"
	"parklopediaAPI/services"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AlertHandler struct {
	alertService *services.AlertService
	userService  *services.UserService
}

func NewAlertHandler(alertService *services.AlertService, userService *services.UserService) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
		userService:  userService,
	}
}

func (h *AlertHandler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.authedUserID(ctx, w)
	if !ok {
		return
	}

	var req alerts.CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	alert, err := h.alertService.CreateAlert(ctx, userID, &req)
	if err != nil {
		respondWithError(w, statusForError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, alert)
}

func (h *AlertHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.authedUserID(ctx, w)
	if !ok {
		return
	}

	list, err := h.alertService.GetUserAlerts(ctx, userID)
	if err != nil {
		respondWithError(w, statusForError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, list)
}

func (h *AlertHandler) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.authedUserID(ctx, w)
	if !ok {
		return
	}

	alertID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	if err := h.alertService.DeactivateAlert(ctx, userID, alertID); err != nil {
		respondWithError(w, statusForError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Alert deactivated"})
}

// Dispatch handles POST /alerts/dispatch. The hourly scheduler runs the same
// sweep internally; this endpoint exists for manual and scoped runs.
func (h *AlertHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req alerts.DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.VehicleID == nil && req.AlertType == nil && !req.CheckAll {
		respondWithError(w, http.StatusBadRequest, "specify vehicle_id, alert_type or check_all")
		return
	}

	result, err := h.alertService.Dispatch(ctx, &req)
	if err != nil {
		respondWithError(w, statusForError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *AlertHandler) authedUserID(ctx context.Context, w http.ResponseWriter) (uuid.UUID, bool) {
	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return uuid.Nil, false
	}

	userID, err := h.userService.ResolveUserID(ctx, clerkID)
	if err != nil {
		log.Printf("AlertHandler: Failed to resolve user %s: %v", clerkID, err)
		respondWithError(w, statusForError(err), err.Error())
		return uuid.Nil, false
	}

	return userID, true
}
