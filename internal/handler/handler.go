package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/noahjmorrison/onnaflips/internal/models"
	"github.com/noahjmorrison/onnaflips/internal/report"
	"github.com/noahjmorrison/onnaflips/internal/repository"
	"github.com/noahjmorrison/onnaflips/internal/service"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// itemRequest is the JSON body for item create/update. Pointer fields
// distinguish absent from zero; empty date strings mean absent.
type itemRequest struct {
	DateBought   *string  `json:"date_bought"`
	DateSold     *string  `json:"date_sold"`
	Description  string   `json:"description"`
	Cost         *float64 `json:"cost"`
	ListingPrice *float64 `json:"listing_price"`
	SoldFor      *float64 `json:"sold_for"`
	Status       string   `json:"status"`
	Notes        *string  `json:"notes"`
}

func (req *itemRequest) toItem() *models.Item {
	item := &models.Item{
		DateBought:   normalizeDate(req.DateBought),
		DateSold:     normalizeDate(req.DateSold),
		Description:  req.Description,
		ListingPrice: req.ListingPrice,
		SoldFor:      req.SoldFor,
		Status:       req.Status,
		Notes:        req.Notes,
	}
	if req.Cost != nil {
		item.Cost = *req.Cost
	}
	return item
}

// ListItems handles GET /api/items
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListItems(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	responses := make([]models.ItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, item.Response())
	}
	writeJSON(w, http.StatusOK, responses)
}

// CreateItem handles POST /api/items
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	item := req.toItem()
	if err := h.svc.CreateItem(r.Context(), item); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item.Response())
}

// GetItem handles GET /api/items/{id}
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.svc.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item.Response())
}

// UpdateItem handles PUT /api/items/{id}
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	existing, err := h.svc.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	item := req.toItem()
	item.ID = id
	if item.Status == "" {
		item.Status = existing.Status
	}
	if err := h.svc.UpdateItem(r.Context(), item); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item.Response())
}

// DeleteItem handles DELETE /api/items/{id}
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteItem(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Item deleted"})
}

// GetStats handles GET /api/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// TaxExport handles GET /api/tax-export, streaming the report PDF.
func (h *Handler) TaxExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start := q.Get("start_date")
	end := q.Get("end_date")
	includeListed := q.Get("include_listed") == "1"

	sold, listed, err := h.svc.TaxReportItems(r.Context(), start, end, includeListed)
	if err != nil {
		writeError(w, err)
		return
	}

	pdf, err := report.Generate(sold, listed, start, end, time.Now())
	if err != nil {
		writeError(w, fmt.Errorf("failed to build report: %w", err))
		return
	}

	filename := fmt.Sprintf("OnnaFlips_TaxReport_%s.pdf", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(pdf)
}

// Login handles POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	token, err := h.svc.Login(req.Password)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid item id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func normalizeDate(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
