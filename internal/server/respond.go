package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"meal-planner/internal/app"
	"meal-planner/internal/family"
	"meal-planner/internal/llm"
	"meal-planner/internal/pantry"
	"meal-planner/internal/plancache"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
	"meal-planner/internal/telegram"
	"meal-planner/internal/validation"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("malformed request")

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes payload before writing the header, so an unencodable
// payload becomes a 500 instead of a truncated success.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"failed to encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, validation.ErrInvalid),
		errors.Is(err, plancache.ErrInvalidInput),
		errors.Is(err, app.ErrNoPreferences),
		errors.Is(err, family.ErrEmptyFamilyName),
		errors.Is(err, family.ErrInvalidInvite),
		errors.Is(err, recipe.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrNotFound),
		errors.Is(err, pantry.ErrNotFound),
		errors.Is(err, family.ErrNotFound),
		errors.Is(err, family.ErrNotMember):
		return http.StatusNotFound
	case errors.Is(err, family.ErrAlreadyMember),
		errors.Is(err, telegram.ErrNoChat):
		return http.StatusConflict
	case errors.Is(err, shopping.ErrMalformedIngredient),
		errors.Is(err, recipe.ErrNotARecipe):
		return http.StatusUnprocessableEntity
	case errors.Is(err, planner.ErrInvalidResponse),
		errors.Is(err, llm.ErrEmptyResponse),
		errors.Is(err, recipe.ErrFetch):
		return http.StatusBadGateway
	case errors.Is(err, llm.ErrUnavailable),
		errors.Is(err, app.ErrNotificationsDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// decode reads a JSON body into v and validates it. An empty body leaves v
// untouched when allowEmpty is set.
func decode(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return validation.Struct(v)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return validation.Struct(v)
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, chi.URLParam(r, "id"))
	}
	return id, nil
}

func boolQuery(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", errBadRequest, name)
	}
	return b, nil
}
