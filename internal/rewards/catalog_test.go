package rewards

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAchievementCatalogIsWellFormed(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range AchievementCatalog {
		assert.False(t, seen[def.ID], "duplicate achievement id %s", def.ID)
		seen[def.ID] = true

		assert.NotEmpty(t, def.Name)
		assert.NotEmpty(t, def.Description)
		assert.Greater(t, def.Points, 0)
		assert.Greater(t, def.CriteriaValue, 0)
	}
	assert.Len(t, AchievementCatalog, 6)
}

func TestAchievementCatalogOrderIsStable(t *testing.T) {
	// Check results are reported in catalog order, so the order itself is
	// part of the contract.
	ids := make([]string, 0, len(AchievementCatalog))
	for _, def := range AchievementCatalog {
		ids = append(ids, def.ID)
	}
	assert.Equal(t, []string{
		"first_vehicle",
		"document_master",
		"booking_streak",
		"streak_master",
		"family_sharer",
		"point_collector",
	}, ids)
}

func TestActionTypeValid(t *testing.T) {
	assert.True(t, ActionVehicleAdded.Valid())
	assert.True(t, ActionStreakBonus.Valid())
	assert.False(t, ActionType("login").Valid())
	assert.False(t, ActionType("").Valid())
}
