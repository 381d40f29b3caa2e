package handlers

import (
	"encoding/json"
	"net/http"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	UserName string `json:"user_name" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Token    string `json:"token"`
}

func (a *App) AuthRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	result, err := a.Auth.Register(r.Context(), req.Email, req.UserName, req.Password)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, authResponse{UserID: result.UserID, UserName: result.UserName, Token: result.Token})
}

func (a *App) AuthLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	result, err := a.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, authResponse{UserID: result.UserID, UserName: result.UserName, Token: result.Token})
}
