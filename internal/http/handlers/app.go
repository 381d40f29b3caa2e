package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"taxfiling/internal/domain"
	"taxfiling/internal/middleware"
	"taxfiling/internal/service"
)

// App bundles the services the handlers dispatch into.
type App struct {
	Auth       *service.AuthService
	Businesses *service.BusinessService
	Quarters   *service.QuarterService
	Logger     zerolog.Logger
	Validate   *validator.Validate
}

func NewApp(auth *service.AuthService, businesses *service.BusinessService, quarters *service.QuarterService, logger zerolog.Logger) *App {
	return &App{
		Auth:       auth,
		Businesses: businesses,
		Quarters:   quarters,
		Logger:     logger,
		Validate:   validator.New(),
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": message},
	})
}

// fail translates domain errors into client-facing outcomes. Anything not
// in the taxonomy is a server error and gets logged.
func (a *App) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrConflict):
		a.error(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		a.error(w, http.StatusBadRequest, "invalid_state", err.Error())
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrInconsistent):
		a.Logger.Error().Err(err).Msg("invariant violation")
		a.error(w, http.StatusInternalServerError, "internal", "internal inconsistency, contact support")
	default:
		a.Logger.Error().Err(err).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
