package shopping

import "time"

// ShoppingList is the persisted shopping list of a saved meal plan.
type ShoppingList struct {
	ID          int64           `json:"id"`
	HouseholdID string          `json:"household_id"`
	MealPlanID  int64           `json:"meal_plan_id"`
	Items       CategorizedList `json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
}
