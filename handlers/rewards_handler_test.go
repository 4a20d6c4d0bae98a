package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Validation failures must be rejected before any service call, so a handler
// with nil services is enough for these tests.

func TestEvaluateStreakRequiresUserID(t *testing.T) {
	h := NewRewardsHandler(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rewards/streak/evaluate", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.EvaluateStreak(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "user_id is required")
}

func TestEvaluateStreakRejectsMalformedUserID(t *testing.T) {
	h := NewRewardsHandler(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rewards/streak/evaluate", strings.NewReader(`{"user_id": "not-a-uuid"}`))
	rec := httptest.NewRecorder()

	h.EvaluateStreak(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid user_id")
}

func TestEvaluateStreakRejectsInvalidBody(t *testing.T) {
	h := NewRewardsHandler(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rewards/streak/evaluate", strings.NewReader(`{`))
	rec := httptest.NewRecorder()

	h.EvaluateStreak(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAwardPointsRequiresUserID(t *testing.T) {
	h := NewRewardsHandler(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rewards/points/award",
		strings.NewReader(`{"points": 50, "action_type": "vehicle_added"}`))
	rec := httptest.NewRecorder()

	h.AwardPoints(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "user_id is required")
}

func TestCheckAchievementsRequiresUserID(t *testing.T) {
	h := NewRewardsHandler(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rewards/achievements/check", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.CheckAchievements(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "user_id is required")
}

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  string
		want int
	}{
		{"user not found", http.StatusNotFound},
		{"vehicle not found", http.StatusNotFound},
		{"invalid alert type: recall", http.StatusBadRequest},
		{"points must be non-zero", http.StatusBadRequest},
		{"location_name is required", http.StatusBadRequest},
		{"cannot use your own referral code", http.StatusBadRequest},
		{"insufficient points", http.StatusConflict},
		{"referral already applied", http.StatusConflict},
		{"redemption limit reached for this reward", http.StatusConflict},
		{"reward is no longer available", http.StatusConflict},
		{"failed to commit redemption: timeout", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, statusForError(errors.New(tc.err)), "error %q", tc.err)
	}
}
