package server

import (
	"net/http"
	"strconv"
	"time"

	"meal-planner/internal/app"
	"meal-planner/internal/family"
	"meal-planner/internal/meal"
	"meal-planner/internal/metrics"
	"meal-planner/internal/pantry"
)

type generateRecipeRequest struct {
	Day      meal.Day      `json:"day" validate:"required"`
	MealType meal.MealType `json:"meal_type" validate:"required"`
	Servings int           `json:"servings" validate:"gte=0,lte=50"`
	Hint     string        `json:"hint" validate:"max=500"`
}

func (s *Server) handleGenerateRecipe(w http.ResponseWriter, r *http.Request) {
	var req generateRecipeRequest
	if err := decode(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	rec, err := s.app.GenerateRecipe(r.Context(), userFrom(r.Context()), app.RecipeInput{
		Day:      req.Day,
		MealType: req.MealType,
		Servings: req.Servings,
		Hint:     req.Hint,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type importRecipeRequest struct {
	URL string `json:"url" validate:"required,url"`
}

func (s *Server) handleImportRecipe(w http.ResponseWriter, r *http.Request) {
	var req importRecipeRequest
	if err := decode(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	saved, err := s.app.ImportRecipe(r.Context(), userFrom(r.Context()), req.URL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.app.Cookbook(r.Context(), userFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.app.CookbookRecipe(r.Context(), userFrom(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListPantry(w http.ResponseWriter, r *http.Request) {
	items, err := s.app.PantryItems(r.Context(), userFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handlePutPantry(w http.ResponseWriter, r *http.Request) {
	var item pantry.Item
	if err := decode(r, &item, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	stored, err := s.app.StockPantry(r.Context(), userFrom(r.Context()), item)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleDeletePantry(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.app.RemovePantryItem(r.Context(), userFrom(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type consumeRequest struct {
	Amount float64 `json:"amount" validate:"gt=0"`
}

func (s *Server) handleConsumePantry(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req consumeRequest
	if err := decode(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	remaining, err := s.app.ConsumePantryItem(r.Context(), userFrom(r.Context()), id, req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"remaining": remaining})
}

type familyResponse struct {
	*family.Family
	Members []family.Member `json:"members"`
}

func (s *Server) handleGetFamily(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	f, err := s.app.Family(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	members, err := s.app.FamilyMembers(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, familyResponse{Family: f, Members: members})
}

type createFamilyRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (s *Server) handleCreateFamily(w http.ResponseWriter, r *http.Request) {
	var req createFamilyRequest
	if err := decode(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := s.app.CreateFamily(r.Context(), userFrom(r.Context()), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

type inviteResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	token, expires, err := s.app.InviteToFamily(r.Context(), userFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inviteResponse{Token: token, ExpiresAt: expires})
}

type joinRequest struct {
	Token string `json:"token" validate:"required"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decode(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := s.app.JoinFamily(r.Context(), userFrom(r.Context()), req.Token)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

type telegramRequest struct {
	ChatID int64 `json:"chat_id" validate:"required"`
}

func (s *Server) handleSetTelegram(w http.ResponseWriter, r *http.Request) {
	var req telegramRequest
	if err := decode(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := s.app.SetFamilyChat(r.Context(), userFrom(r.Context()), req.ChatID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string            `json:"status"`
		System metrics.SysHealth `json:"system"`
	}{
		Status: "ok",
		System: metrics.GetSysHealth(s.opts.DataDir),
	})
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 365 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "days must be between 1 and 365"})
			return
		}
		days = n
	}

	usage, err := s.app.Usage(r.Context(), days)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usage)
}
