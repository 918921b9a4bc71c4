package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kabbani-home/inventory-api/internal/auth"
)

type AuthHandler struct {
	Users     *auth.Repo
	Guard     *auth.Guard
	JWTSecret string
	// AdminKey, when non-empty, lets signup mint an admin account.
	AdminKey string
}

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	AdminKey string `json:"adminKey"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResp struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

func (h *AuthHandler) Register(r *chi.Mux) {
	r.Post("/api/auth/signup", h.signup)
	r.Post("/api/auth/login", h.login)
	r.Group(func(r chi.Router) {
		r.Use(h.Guard.Authenticate)
		r.Get("/api/auth/me", h.me)
	})
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "name, email and password are required")
		return
	}

	role := auth.RoleUser
	if h.AdminKey != "" && req.AdminKey == h.AdminKey {
		role = auth.RoleAdmin
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, role)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	token, err := auth.SignToken(h.JWTSecret, u)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]userResp{"user": {
		ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Token: token,
	}})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.FindByEmail(ctx, req.Email)
	if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		writeDomainError(w, auth.ErrInvalidCredentials)
		return
	}
	token, err := auth.SignToken(h.JWTSecret, u)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]userResp{"user": {
		ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Token: token,
	}})
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, err := h.Users.FindByID(ctx, claims.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]auth.User{"user": u})
}
