package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"parklopediaAPI/internal/emergency"
	"parklopediaAPI/middleware"
	"parklopediaAPI/services"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type EmergencyHandler struct {
	emergencyService *services.EmergencyService
	userService      *services.UserService
}

func NewEmergencyHandler(emergencyService *services.EmergencyService, userService *services.UserService) *EmergencyHandler {
	return &EmergencyHandler{
		emergencyService: emergencyService,
		userService:      userService,
	}
}

func (h *EmergencyHandler) TriggerSOS(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := h.authedUserID(ctx, w)
	if !ok {
		return
	}

	var req emergency.SOSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.emergencyService.TriggerSOS(ctx, userID, &req)
	if err != nil {
		respondWithError(w, statusForError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, resp)
}

func (h *EmergencyHandler) ResolveIncident(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.authedUserID(ctx, w)
	if !ok {
		return
	}

	incidentID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid incident id")
		return
	}

	if err := h.emergencyService.ResolveIncident(ctx, userID, incidentID); err != nil {
		respondWithError(w, statusForError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Incident resolved"})
}

func (h *EmergencyHandler) authedUserID(ctx context.Context, w http.ResponseWriter) (uuid.UUID, bool) {
	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return uuid.Nil, false
	}

	userID, err := h.userService.ResolveUserID(ctx, clerkID)
	if err != nil {
		log.Printf("EmergencyHandler: Failed to resolve user %s: %v", clerkID, err)
		respondWithError(w, statusForError(err), err.Error())
		return uuid.Nil, false
	}

	return userID, true
}
