package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

type businessRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=200"`
	StartDate string `json:"start_date" validate:"required"`
}

type businessResponse struct {
	BusinessID int    `json:"business_id"`
	Name       string `json:"name"`
}

func (a *App) BusinessCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req businessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "start_date must be a date in YYYY-MM-DD format")
		return
	}
	business, err := a.Businesses.Onboard(r.Context(), userID, req.Name, startDate)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusCreated, businessResponse{BusinessID: business.ID, Name: business.Name})
}
