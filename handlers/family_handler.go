package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"parklopediaAPI/internal/family"
	"parklopediaAPI/middleware"
	"parklopediaAPI/services"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type FamilyHandler struct {
	familyService *services.FamilyService
	userService   *services.UserService
}

func NewFamilyHandler(familyService *services.FamilyService, userService *services.UserService) *FamilyHandler {
	return &FamilyHandler{
		familyService: familyService,
		userService:   userService,
	}
}

func (h *FamilyHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.authedUserID(ctx, w)
	if !ok {
		return
	}

	var req family.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	g, err := h.familyService.CreateGroup(ctx, userID, &req)
	if err != nil {
		respondWithError(w, statusForError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, g)
}

func (h *FamilyHandler) GetGroups(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.authedUserID(ctx, w)
	if !ok {
		return
	}

	groups, err := h.familyService.GetGroups(ctx, userID)
	if err != nil {
		respondWithError(w, statusForError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, groups)
}

func (h *FamilyHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.authedUserID(ctx, w)
	if !ok {
		return
	}

	groupID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	var req family.AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.MemberClerkID == "" {
		respondWithError(w, http.StatusBadRequest, "member_clerk_id is required")
		return
	}

	m, err := h.familyService.AddMember(ctx, userID, groupID, &req)
	if err != nil {
		respondWithError(w, statusForError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, m)
}

func (h *FamilyHandler) GetMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.authedUserID(ctx, w)
	if !ok {
		return
	}

	groupID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	members, err := h.familyService.GetMembers(ctx, userID, groupID)
	if err != nil {
		respondWithError(w, statusForError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, members)
}

func (h *FamilyHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := h.authedUserID(ctx, w)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	groupID, err := uuid.Parse(vars["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid group id")
		return
	}
	memberID, err := uuid.Parse(vars["memberId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	if err := h.familyService.RemoveMember(ctx, userID, groupID, memberID); err != nil {
		respondWithError(w, statusForError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Member removed"})
}

func (h *FamilyHandler) authedUserID(ctx context.Context, w http.ResponseWriter) (uuid.UUID, bool) {
	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return uuid.Nil, false
	}

	userID, err := h.userService.ResolveUserID(ctx, clerkID)
	if err != nil {
		log.Printf("FamilyHandler: Failed to resolve user %s: %v", clerkID, err)
		respondWithError(w, statusForError(err), err.Error())
		return uuid.Nil, false
	}

	return userID, true
}
