package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-ledger/internal/api/middleware"
	"github.com/dvloznov/expense-ledger/internal/classify"
	"github.com/dvloznov/expense-ledger/internal/domain"
	"github.com/dvloznov/expense-ledger/internal/stats"
	"github.com/dvloznov/expense-ledger/internal/store"
)

// TransactionsHandler handles transaction CRUD endpoints.
type TransactionsHandler struct {
	store *store.Store
	log   zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(s *store.Store, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{store: s, log: log}
}

// List handles GET /api/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	startDateStr := query.Get("start_date")
	endDateStr := query.Get("end_date")

	txs := h.store.List()

	if startDateStr != "" || endDateStr != "" {
		start := time.Time{}
		end := time.Now().AddDate(100, 0, 0)
		var err error

		if startDateStr != "" {
			start, err = time.ParseInLocation("2006-01-02", startDateStr, time.Local)
			if err != nil {
				middleware.WriteError(w, http.StatusBadRequest, "Invalid start_date format")
				return
			}
		}
		if endDateStr != "" {
			end, err = time.ParseInLocation("2006-01-02", endDateStr, time.Local)
			if err != nil {
				middleware.WriteError(w, http.StatusBadRequest, "Invalid end_date format")
				return
			}
			end = end.AddDate(0, 0, 1) // inclusive end date
		}

		filtered := make([]domain.Transaction, 0, len(txs))
		for _, tx := range txs {
			if !tx.Date.Before(start) && tx.Date.Before(end) {
				filtered = append(filtered, tx)
			}
		}
		txs = filtered
	}

	middleware.WriteJSON(w, http.StatusOK, txs)
}

// Create handles POST /api/transactions
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft domain.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if draft.Category != "" && !domain.ValidCategory(draft.Category) {
		h.log.Warn().Str("category", draft.Category).Msg("Committing a category outside the taxonomy")
	}

	tx, err := h.store.Add(draft)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.log.Info().Str("transaction_id", tx.ID).Float64("amount", tx.Amount).Msg("Transaction created")
	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// Update handles PUT /api/transactions/{id}
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var tx domain.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	tx.ID = id

	updated, err := h.store.Update(tx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Delete(id); err != nil {
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to delete transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StatsHandler handles the statistics endpoint.
type StatsHandler struct {
	store *store.Store
	log   zerolog.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(s *store.Store, log zerolog.Logger) *StatsHandler {
	return &StatsHandler{store: s, log: log}
}

// Get handles GET /api/stats?period=week|month|year&anchor=YYYY-MM-DD
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	period := stats.Period(query.Get("period"))
	if period == "" {
		period = stats.PeriodMonth
	}
	if !period.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "period must be week, month or year")
		return
	}

	anchor := time.Now()
	if anchorStr := query.Get("anchor"); anchorStr != "" {
		var err error
		anchor, err = time.ParseInLocation("2006-01-02", anchorStr, time.Local)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid anchor format")
			return
		}
	}

	summary, err := stats.Compute(h.store.List(), period, anchor)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute statistics")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute statistics")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, summary)
}

// CategoriesHandler handles the taxonomy and suggestion endpoints.
type CategoriesHandler struct {
	store *store.Store
	log   zerolog.Logger
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(s *store.Store, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{store: s, log: log}
}

// List handles GET /api/categories
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": domain.Categories,
	})
}

// Suggest handles GET /api/categories/suggest?description=...
// The suggester is retrained from the current collection on each call; at
// personal-ledger scale that is cheaper than cache invalidation.
func (h *CategoriesHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	description := r.URL.Query().Get("description")
	if description == "" {
		middleware.WriteError(w, http.StatusBadRequest, "description is required")
		return
	}

	suggester := classify.NewSuggester(h.store.List())
	category, ok := suggester.Suggest(description)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"category": category,
		"found":    ok,
	})
}
