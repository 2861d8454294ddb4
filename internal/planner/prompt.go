package planner

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"meal-planner/internal/meal"
)

//go:embed plan_prompt.md
var planPrompt string

//go:embed recipe_prompt.md
var recipePrompt string

var promptFuncs = template.FuncMap{
	"join": func(v any) string {
		var parts []string
		switch vals := v.(type) {
		case []string:
			parts = vals
		case []meal.Day:
			for _, d := range vals {
				parts = append(parts, string(d))
			}
		case []meal.Category:
			for _, c := range vals {
				parts = append(parts, string(c))
			}
		}
		if len(parts) == 0 {
			return "none"
		}
		return strings.Join(parts, ", ")
	},
	"deref": func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	},
}

var (
	planTmpl   = template.Must(template.New("plan").Funcs(promptFuncs).Parse(planPrompt))
	recipeTmpl = template.Must(template.New("recipe").Funcs(promptFuncs).Parse(recipePrompt))
)

type planPromptData struct {
	Preferences meal.UserPreferences
	WeekStart   string
	Servings    int
	Days        []meal.Day
	Categories  []meal.Category
}

type recipePromptData struct {
	Preferences meal.UserPreferences
	Day         meal.Day
	MealType    meal.MealType
	Servings    int
	Hint        string
	Categories  []meal.Category
}

func buildPlanPrompt(req PlanRequest) (string, error) {
	return render(planTmpl, planPromptData{
		Preferences: req.Preferences,
		WeekStart:   req.WeekStart,
		Servings:    req.Servings,
		Days:        meal.Days,
		Categories:  meal.Categories,
	})
}

func buildRecipePrompt(req RecipeRequest) (string, error) {
	return render(recipeTmpl, recipePromptData{
		Preferences: req.Preferences,
		Day:         req.Day,
		MealType:    req.MealType,
		Servings:    req.Servings,
		Hint:        req.Hint,
		Categories:  meal.Categories,
	})
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// extractJSON returns the outermost JSON object in an LLM response, dropping
// markdown fences and any prose around it.
func extractJSON(content string) (string, error) {
	s := strings.TrimSpace(content)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("response contains no JSON object")
	}
	return s[start : end+1], nil
}
