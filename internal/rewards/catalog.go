package rewards

type CriteriaType string

const (
	CriteriaVehicleCount     CriteriaType = "vehicle_count"
	CriteriaDocumentCount    CriteriaType = "document_count"
	CriteriaParkingBookings  CriteriaType = "parking_bookings"
	CriteriaCurrentStreak    CriteriaType = "current_streak"
	CriteriaFamilyGroupsOwed CriteriaType = "family_groups_owned"
	CriteriaTotalPoints      CriteriaType = "total_points"
)

// AchievementDef is a catalog entry. The predicate is "counter for
// CriteriaType >= CriteriaValue" against live user data.
type AchievementDef struct {
	ID            string
	Name          string
	Description   string
	Icon          string
	Points        int
	CriteriaType  CriteriaType
	CriteriaValue int
}

// AchievementCatalog is the fixed, ordered achievement catalog. Results of an
// achievement check are reported in this order.
var AchievementCatalog = []AchievementDef{
	{
		ID:            "first_vehicle",
		Name:          "First Ride",
		Description:   "Add your first vehicle",
		Icon:          "🚗",
		Points:        50,
		CriteriaType:  CriteriaVehicleCount,
		CriteriaValue: 1,
	},
	{
		ID:            "document_master",
		Name:          "Document Master",
		Description:   "Upload 5 vehicle documents",
		Icon:          "📄",
		Points:        100,
		CriteriaType:  CriteriaDocumentCount,
		CriteriaValue: 5,
	},
	{
		ID:            "booking_streak",
		Name:          "Regular Parker",
		Description:   "Make 10 parking bookings",
		Icon:          "🅿️",
		Points:        150,
		CriteriaType:  CriteriaParkingBookings,
		CriteriaValue: 10,
	},
	{
		ID:            "streak_master",
		Name:          "Streak Master",
		Description:   "Maintain a 7-day usage streak",
		Icon:          "🔥",
		Points:        200,
		CriteriaType:  CriteriaCurrentStreak,
		CriteriaValue: 7,
	},
	{
		ID:            "family_sharer",
		Name:          "Family Coordinator",
		Description:   "Create a family group and share vehicles",
		Icon:          "👨‍👩‍👧‍👦",
		Points:        250,
		CriteriaType:  CriteriaFamilyGroupsOwed,
		CriteriaValue: 1,
	},
	{
		ID:            "point_collector",
		Name:          "Point Collector",
		Description:   "Earn 1000 total points",
		Icon:          "⭐",
		Points:        300,
		CriteriaType:  CriteriaTotalPoints,
		CriteriaValue: 1000,
	},
}
