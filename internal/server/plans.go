package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"meal-planner/internal/app"
	"meal-planner/internal/meal"
	"meal-planner/internal/shopping"
)

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.app.Preferences(r.Context(), userFrom(r.Context()))
	if errors.Is(err, app.ErrNoPreferences) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs meal.UserPreferences
	if err := decode(r, &prefs, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.app.SavePreferences(r.Context(), userFrom(r.Context()), prefs); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

type createPlanRequest struct {
	Preferences *meal.UserPreferences `json:"preferences"`
	WeekStart   string                `json:"week_start" validate:"omitempty,datetime=2006-01-02"`
	Servings    int                   `json:"servings" validate:"gte=0,lte=50"`
	Force       bool                  `json:"force"`
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := decode(r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := s.app.PlanWeek(r.Context(), userFrom(r.Context()), app.PlanInput{
		Preferences: req.Preferences,
		WeekStart:   req.WeekStart,
		Servings:    req.Servings,
		Force:       req.Force,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, fmt.Errorf("%w: limit must be a non-negative integer", errBadRequest))
			return
		}
		limit = n
	}

	plans, err := s.app.RecentPlans(r.Context(), userFrom(r.Context()), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.app.Plan(r.Context(), userFrom(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCurrentPlan(w http.ResponseWriter, r *http.Request) {
	p, err := s.app.CurrentPlan(r.Context(), userFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSendPlan(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.app.SendPlan(r.Context(), userFrom(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

type shoppingListResponse struct {
	*shopping.ShoppingList
	Sections []shopping.Section `json:"sections"`
}

// handleShoppingList answers with JSON, or with the plain-text rendering
// when format=text.
func (s *Server) handleShoppingList(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	excludePantry, err := boolQuery(r, "exclude_pantry")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	list, err := s.app.ShoppingList(r.Context(), userFrom(r.Context()), id, excludePantry)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(shopping.FormatText(list.Items)))
		return
	}
	writeJSON(w, http.StatusOK, shoppingListResponse{ShoppingList: list, Sections: list.Items.Ordered()})
}

func (s *Server) handleDiscardShoppingList(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.app.DiscardShoppingList(r.Context(), userFrom(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSendShoppingList(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	excludePantry, err := boolQuery(r, "exclude_pantry")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.app.SendShoppingList(r.Context(), userFrom(r.Context()), id, excludePantry); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}
