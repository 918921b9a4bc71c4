package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/kabbani-home/inventory-api/internal/auth"
	"github.com/kabbani-home/inventory-api/internal/catalog"
	"github.com/kabbani-home/inventory-api/internal/redisx"
)

type CatalogHandler struct {
	Repo  *catalog.Repo
	Redis *redis.Client
	Guard *auth.Guard
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/api/health", h.health)
	r.Get("/api/products", h.list)
	r.Get("/api/products/search", h.searchByID)
	r.Get("/api/products/search-by-name", h.searchByName)
	r.Get("/api/products/suggestions", h.suggestions)
	r.Get("/api/products/department/{department}", h.byDepartment)
	r.Get("/api/products/warehouse/{warehouse}", h.byWarehouse)
	r.Get("/api/warehouses", h.warehouses)
	r.Get("/api/warehouses/stats", h.warehouseStats)
	r.Get("/api/categories", h.categories)

	r.Group(func(r chi.Router) {
		r.Use(h.Guard.Authenticate, h.Guard.RequireAdmin)
		r.Put("/api/admin/products/{productId}/quantity", h.setQuantity)
	})
}

func (h *CatalogHandler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	products, categories, warehouses, err := h.Repo.Counts(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "OK",
		"message":            "Server is running",
		"productsInDatabase": products,
		"categoriesCount":    categories,
		"warehousesCount":    warehouses,
		"timestamp":          time.Now().UTC(),
	})
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", 100)
	skip := intQuery(r, "skip", 0)

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, total, err := h.Repo.List(ctx, limit, skip)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products": catalog.ToViews(ps),
		"total":    total,
		"returned": len(ps),
		"hasMore":  skip+len(ps) < total,
	})
}

func (h *CatalogHandler) searchByID(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "product id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// read-through cache
	key := fmt.Sprintf(redisx.KeyProduct, id)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(s))
		return
	}

	p, err := h.Repo.GetByProductID(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	body, _ := json.Marshal(map[string]catalog.View{"product": p.ToView()})
	_ = h.Redis.Set(ctx, key, body, redisx.TTLProduct).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *CatalogHandler) searchByName(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sp := catalog.SearchParams{
		Query:     q.Get("q"),
		Category:  q.Get("category"),
		Warehouse: q.Get("warehouse"),
		Sort:      q.Get("sort"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ps, err := h.Repo.Search(ctx, sp)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products":  catalog.ToViews(ps),
		"total":     len(ps),
		"query":     sp.Query,
		"category":  orDefault(sp.Category, "All"),
		"warehouse": orDefault(sp.Warehouse, "All"),
		"sort":      orDefault(sp.Sort, "name"),
	})
}

func (h *CatalogHandler) suggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if len(q) < 2 {
		writeJSON(w, http.StatusOK, map[string]any{"suggestions": []catalog.Suggestion{}})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	sugg, err := h.Repo.Suggestions(ctx, q, 10)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": sugg})
}

func (h *CatalogHandler) byDepartment(w http.ResponseWriter, r *http.Request) {
	department := chi.URLParam(r, "department")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Repo.ByCategory(ctx, department)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"department": department,
		"products":   catalog.ToViews(ps),
		"total":      len(ps),
	})
}

func (h *CatalogHandler) byWarehouse(w http.ResponseWriter, r *http.Request) {
	warehouse := chi.URLParam(r, "warehouse")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Repo.ByWarehouse(ctx, warehouse)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"warehouse": warehouse,
		"products":  catalog.ToViews(ps),
		"total":     len(ps),
	})
}

func (h *CatalogHandler) warehouses(w http.ResponseWriter, r *http.Request) {
	h.cachedList(w, r, redisx.KeyWarehouses, "warehouses", h.Repo.Warehouses)
}

func (h *CatalogHandler) categories(w http.ResponseWriter, r *http.Request) {
	h.cachedList(w, r, redisx.KeyCategories, "categories", h.Repo.Categories)
}

func (h *CatalogHandler) cachedList(w http.ResponseWriter, r *http.Request, key, field string,
	load func(context.Context) ([]string, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(s))
		return
	}
	values, err := load(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	body, _ := json.Marshal(map[string]any{field: values, "total": len(values)})
	_ = h.Redis.Set(ctx, key, body, redisx.TTLCatalog).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *CatalogHandler) warehouseStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if s, err := h.Redis.Get(ctx, redisx.KeyWarehouseStats).Result(); err == nil && s != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(s))
		return
	}
	stats, err := h.Repo.WarehouseStats(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	body, _ := json.Marshal(map[string]any{"warehouses": stats, "total": len(stats)})
	_ = h.Redis.Set(ctx, redisx.KeyWarehouseStats, body, redisx.TTLStats).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

type setQuantityReq struct {
	Quantity *int `json:"quantity"`
}

func (h *CatalogHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	var req setQuantityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}
	if req.Quantity == nil || *req.Quantity < 0 {
		WriteError(w, http.StatusBadRequest, "invalid_request", "valid quantity required (must be >= 0)")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	old, p, err := h.Repo.SetQuantity(ctx, productID, *req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	redisx.InvalidateProduct(ctx, h.Redis, productID)

	claims, _ := auth.FromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Quantity updated successfully",
		"product": map[string]any{
			"id":           p.ProductID,
			"name":         p.Name,
			"old_quantity": old,
			"new_quantity": p.CurrentQuantity,
			"updated_by":   claims.Email,
		},
	})
}

func intQuery(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
