package meal

// UserPreferences describes the dietary profile a plan is generated for.
// Optional fields are omitted from the JSON form when unset so that an
// absent value and a zero value never serialize the same way.
type UserPreferences struct {
	DietaryRestrictions []string `json:"dietaryRestrictions" validate:"dive,required"`
	Allergies           []string `json:"allergies" validate:"dive,required"`
	DailyCalorieGoal    float64  `json:"dailyCalorieGoal" validate:"gte=0"`
	MaxCookingTimeMins  *int     `json:"maxCookingTimeMins,omitempty" validate:"omitempty,gt=0"`
	BudgetLevel         *int     `json:"budgetLevel,omitempty" validate:"omitempty,min=1,max=5"`
	DislikedIngredients []string `json:"dislikedIngredients,omitempty" validate:"omitempty,dive,required"`
	PreferredCuisines   []string `json:"preferredCuisines,omitempty" validate:"omitempty,dive,required"`
}

// IntPtr is a small helper for filling optional preference fields.
func IntPtr(v int) *int {
	return &v
}
