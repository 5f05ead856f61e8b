package handler

import (
	"errors"
	"net/http"

	"BlogCMS/internal/auth"
	"BlogCMS/internal/logger"
	"BlogCMS/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler checks credentials and issues a bearer token. Bad email and
// bad password produce the same response.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	userID, fullName, err := users.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrNotFound) {
		logger.Warn("login_failed", map[string]any{"email": req.Email})
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		writeError(w, r.URL.Path, err)
		return
	}

	token, err := auth.IssueToken(cfg.Auth, userID, fullName)
	if err != nil {
		writeError(w, r.URL.Path, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user": map[string]any{
			"id":        userID,
			"full_name": fullName,
		},
	})
}

// RegisterHandler creates an account and signs the new user straight in,
// returning the same token payload as login.
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var in service.UserInput
	if !decodeBody(w, r, &in) {
		return
	}

	userID, err := users.Create(r.Context(), in)
	if err != nil {
		writeError(w, r.URL.Path, err)
		return
	}
	logger.Info("user_registered", map[string]any{"user_id": userID, "email": in.Email})

	token, err := auth.IssueToken(cfg.Auth, userID, in.FullName)
	if err != nil {
		writeError(w, r.URL.Path, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"token": token,
		"user": map[string]any{
			"id":        userID,
			"full_name": in.FullName,
		},
	})
}

// LogoutHandler exists for the client's session flow; tokens are stateless
// and simply expire, so there is nothing to revoke server-side.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Logged out")
}
