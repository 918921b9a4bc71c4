package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/kabbani-home/inventory-api/internal/auth"
	"github.com/kabbani-home/inventory-api/internal/redisx"
	"github.com/kabbani-home/inventory-api/internal/reservation"
)

type ReservationsHandler struct {
	Service *reservation.Service
	Redis   *redis.Client
	Guard   *auth.Guard
}

func (h *ReservationsHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(h.Guard.Authenticate)
		r.Post("/api/reservations", h.create)
		r.Get("/api/reservations/my", h.listMine)
		r.Delete("/api/reservations/{id}", h.cancel)

		r.Group(func(r chi.Router) {
			r.Use(h.Guard.RequireAdmin)
			r.Get("/api/reservations", h.listAll)
			r.Patch("/api/reservations/{id}/fulfill", h.fulfill)
		})
	})
}

func (h *ReservationsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in reservation.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}
	claims, _ := auth.FromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Service.Create(ctx, claims.ID, in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	redisx.InvalidateProduct(ctx, h.Redis, res.ProductID)
	writeJSON(w, http.StatusCreated, res)
}

func (h *ReservationsHandler) listAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Service.ListAll(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if list == nil {
		list = []reservation.Reservation{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ReservationsHandler) listMine(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Service.ListForCustomer(ctx, claims.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if list == nil {
		list = []reservation.Reservation{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ReservationsHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims, _ := auth.FromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Service.Cancel(ctx, id, claims.ID, claims.Role)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	redisx.InvalidateProduct(ctx, h.Redis, res.ProductID)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *ReservationsHandler) fulfill(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// RequireAdmin already re-checked the role against the users table.
	res, err := h.Service.Fulfill(ctx, id, auth.RoleAdmin)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
