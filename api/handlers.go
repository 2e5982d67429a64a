/*
handlers.go - HTTP API handlers for the booking admin panel

PURPOSE:
  Exposes the reconciliation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Slots and pricing:
    GET    /api/slots                 List the slot catalog
    GET    /api/slot-prices           List pricing rules
    POST   /api/slot-prices           Create a default price or override
    DELETE /api/slot-prices/{id}      Remove a rule

  Bookings:
    GET    /api/bookings              Matrix of a date range
    POST   /api/bookings              Create a single or recurring booking
    GET    /api/bookings/{id}         Full reconciliation summary
    POST   /api/bookings/{id}/cancel  Soft-cancel (ledger retained)
    DELETE /api/bookings/{id}         Hard-delete (ledger removed)

  Ledger:
    POST   /api/bookings/{id}/transactions  Record a transaction
    PUT    /api/transactions/{id}           Edit a transaction
    DELETE /api/transactions/{id}           Delete a transaction

  Aggregates:
    GET    /api/journal               Financial journal for a range
    GET    /api/dashboard             Headline numbers

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (validator tags on request DTOs)
  3. Call domain logic (service, journal)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, pricing gaps
  - 404: Resource not found
  - 409: Slot conflict
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jmahadi/north-arena-webapp/engine"
	"github.com/jmahadi/north-arena-webapp/journal"
	"github.com/jmahadi/north-arena-webapp/store/sqlite"
)

// maxMatrixMonths caps the bookings matrix range. The frontend renders a
// rolling window; anything wider is a client bug or an abuse attempt.
const maxMatrixMonths = 3

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Service *engine.Service
	Journal *journal.Journal
	Catalog engine.SlotCatalog
	Logger  *zap.Logger

	validate *validator.Validate
}

// NewHandler creates a new handler with the given dependencies.
func NewHandler(store *sqlite.Store, svc *engine.Service, jrnl *journal.Journal, catalog engine.SlotCatalog, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:    store,
		Service:  svc,
		Journal:  jrnl,
		Catalog:  catalog,
		Logger:   logger,
		validate: validator.New(),
	}
}

// =============================================================================
// SLOT AND PRICING HANDLERS
// =============================================================================

// ListSlots returns the slot catalog in display order.
func (h *Handler) ListSlots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.Slots())
}

// ListPriceRules returns pricing rules, optionally filtered by slot and day.
func (h *Handler) ListPriceRules(w http.ResponseWriter, r *http.Request) {
	var filter engine.RuleFilter
	if s := r.URL.Query().Get("time_slot"); s != "" {
		slot := engine.TimeSlot(s)
		filter.TimeSlot = &slot
	}
	if d := r.URL.Query().Get("day_of_week"); d != "" {
		day, err := engine.ParseDayOfWeek(d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid day_of_week", err)
			return
		}
		filter.Day = &day
	}

	rules, err := h.Store.ListPriceRules(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list price rules", err)
		return
	}

	dtos := make([]PriceRuleDTO, len(rules))
	for i, rule := range rules {
		dtos[i] = toPriceRuleDTO(rule)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePriceRule installs a default price or a temporary override.
func (h *Handler) CreatePriceRule(w http.ResponseWriter, r *http.Request) {
	var req CreatePriceRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}
	if !h.Catalog.Contains(engine.TimeSlot(req.TimeSlot)) {
		writeError(w, http.StatusBadRequest, "Unknown time slot", nil)
		return
	}

	price, err := engine.ParseMoney(req.Price)
	if err != nil || price.IsNegative() {
		writeError(w, http.StatusBadRequest, "Invalid price", err)
		return
	}

	day, _ := engine.ParseDayOfWeek(req.Day)
	rule := engine.PriceRule{
		ID:        engine.RuleID(uuid.NewString()),
		TimeSlot:  engine.TimeSlot(req.TimeSlot),
		Day:       day,
		Price:     price,
		IsDefault: req.IsDefault,
		Validity:  engine.Indefinite(),
	}

	if !req.IsDefault {
		// Overrides must be bounded. An unbounded override would silently
		// shadow the default forever.
		start, err := engine.ParseDate(req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Override requires start_date (YYYY-MM-DD)", err)
			return
		}
		end, err := engine.ParseDate(req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Override requires end_date (YYYY-MM-DD)", err)
			return
		}
		if end.Before(start) {
			writeError(w, http.StatusBadRequest, "end_date before start_date", nil)
			return
		}
		rule.Validity = engine.Between(start, end)
	}

	saved, err := h.Store.SavePriceRule(r.Context(), rule)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save price rule", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPriceRuleDTO(saved))
}

// DeletePriceRule removes a pricing rule.
func (h *Handler) DeletePriceRule(w http.ResponseWriter, r *http.Request) {
	id := engine.RuleID(chi.URLParam(r, "id"))
	if err := h.Store.DeletePriceRule(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to delete price rule", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// BOOKING HANDLERS
// =============================================================================

// GetMatrix returns the occupancy matrix for a date range, keyed
// "YYYY-MM-DD_<slot>" the way the calendar frontend consumes it.
func (h *Handler) GetMatrix(w http.ResponseWriter, r *http.Request) {
	start, err := engine.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", err)
		return
	}
	end, err := engine.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", err)
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end before start", nil)
		return
	}
	if limit := start.AddMonths(maxMatrixMonths); end.After(limit) {
		end = limit
	}

	occs, err := h.Store.ListOccurrences(r.Context(), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list occurrences", err)
		return
	}
	bookings, err := h.Store.ListBookings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bookings", err)
		return
	}
	byID := make(map[engine.BookingID]engine.Booking, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
	}

	cells := make(map[string]MatrixCellDTO, len(occs))
	for _, occ := range occs {
		b := byID[occ.BookingID]
		cells[occ.Date.String()+"_"+string(occ.TimeSlot)] = MatrixCellDTO{
			BookingID: string(occ.BookingID),
			Name:      b.Customer.Name,
			Phone:     b.Customer.Phone,
			Date:      occ.Date.String(),
			TimeSlot:  string(occ.TimeSlot),
			Kind:      string(b.Kind),
		}
	}

	writeJSON(w, http.StatusOK, MatrixResponse{
		Start:    start.String(),
		End:      end.String(),
		Bookings: cells,
	})
}

// CreateBooking books a single date or a recurring range.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	domainReq, err := h.toBookingRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid booking request", err)
		return
	}

	result, err := h.Service.CreateBooking(r.Context(), domainReq)
	if err != nil {
		h.writeDomainError(w, "Failed to create booking", err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateBookingResponse{
		Booking:   toBookingDTO(result.Booking),
		Booked:    toOccurrenceDTOs(result.Booked),
		Conflicts: toConflictDTOs(result.Conflicts),
		Total:     result.Quote.Total.String(),
	})
}

func (h *Handler) toBookingRequest(req CreateBookingRequest) (engine.BookingRequest, error) {
	out := engine.BookingRequest{
		Customer: engine.Customer{Name: req.Name, Phone: req.Phone},
		TimeSlot: engine.TimeSlot(req.TimeSlot),
		Kind:     engine.BookingKind(req.Kind),
		Notes:    req.Notes,
	}

	if req.StartDate != "" || req.EndDate != "" {
		start, err := engine.ParseDate(req.StartDate)
		if err != nil {
			return out, err
		}
		end, err := engine.ParseDate(req.EndDate)
		if err != nil {
			return out, err
		}
		days := make([]engine.DayOfWeek, 0, len(req.DaysOfWeek))
		for _, d := range req.DaysOfWeek {
			day, err := engine.ParseDayOfWeek(d)
			if err != nil {
				return out, err
			}
			days = append(days, day)
		}
		out.AnchorDate = start
		out.Recurrence = engine.Range(start, end, days...)
		if out.Kind == "" {
			out.Kind = engine.KindBulk
		}
		return out, nil
	}

	anchor, err := engine.ParseDate(req.BookingDate)
	if err != nil {
		return out, err
	}
	out.AnchorDate = anchor
	out.Recurrence = engine.Single()
	return out, nil
}

// GetBookingSummary returns the full reconciliation view of a booking.
func (h *Handler) GetBookingSummary(w http.ResponseWriter, r *http.Request) {
	id := engine.BookingID(chi.URLParam(r, "id"))
	summary, err := h.Service.GetSummary(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get booking summary", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

// CancelBooking soft-cancels: the slot frees up, the ledger stays.
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id := engine.BookingID(chi.URLParam(r, "id"))
	booking, err := h.Service.CancelBooking(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to cancel booking", err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(*booking))
}

// PurgeBooking hard-deletes the booking and its ledger.
func (h *Handler) PurgeBooking(w http.ResponseWriter, r *http.Request) {
	id := engine.BookingID(chi.URLParam(r, "id"))
	if err := h.Service.PurgeBooking(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to delete booking", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// RecordTransaction appends a ledger entry and returns the recomputed
// summary.
func (h *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	bookingID := engine.BookingID(chi.URLParam(r, "id"))

	var req RecordTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	amount, err := engine.ParseMoney(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	tx := engine.Transaction{
		Type:      engine.TransactionType(req.Type),
		Amount:    amount,
		Sign:      engine.AdjustmentSign(req.Sign),
		CreatedBy: req.CreatedBy,
		CreatedAt: time.Now().UTC(),
	}
	if req.Method != "" {
		m := engine.PaymentMethod(req.Method)
		tx.Method = &m
	}

	summary, err := h.Service.RecordTransaction(r.Context(), bookingID, tx)
	if err != nil {
		h.writeDomainError(w, "Failed to record transaction", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSummaryResponse(summary))
}

// EditTransaction corrects a ledger entry and returns the recomputed
// summary.
func (h *Handler) EditTransaction(w http.ResponseWriter, r *http.Request) {
	id := engine.TransactionID(chi.URLParam(r, "id"))

	var req EditTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	patch := engine.TransactionPatch{
		ClearMethod: req.ClearMethod,
		UpdatedBy:   req.UpdatedBy,
	}
	if req.Type != nil {
		t := engine.TransactionType(*req.Type)
		patch.Type = &t
	}
	if req.Method != nil {
		m := engine.PaymentMethod(*req.Method)
		patch.Method = &m
	}
	if req.Amount != nil {
		amount, err := engine.ParseMoney(*req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid amount", err)
			return
		}
		patch.Amount = &amount
	}
	if req.Sign != nil {
		s := engine.AdjustmentSign(*req.Sign)
		patch.Sign = &s
	}

	summary, err := h.Service.EditTransaction(r.Context(), id, patch)
	if err != nil {
		h.writeDomainError(w, "Failed to edit transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

// DeleteTransaction removes a ledger entry and returns the recomputed
// summary.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := engine.TransactionID(chi.URLParam(r, "id"))
	summary, err := h.Service.DeleteTransaction(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to delete transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

// =============================================================================
// AGGREGATE HANDLERS
// =============================================================================

// GetJournal returns the financial journal for a date range, newest first.
// Defaults to the last 30 days.
func (h *Handler) GetJournal(w http.ResponseWriter, r *http.Request) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)

	if s := r.URL.Query().Get("start"); s != "" {
		d, err := engine.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", err)
			return
		}
		from = d.Time()
	}
	if s := r.URL.Query().Get("end"); s != "" {
		d, err := engine.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", err)
			return
		}
		to = d.AddDays(1).Time().Add(-time.Nanosecond)
	}

	entries, err := h.Journal.Entries(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load journal", err)
		return
	}
	writeJSON(w, http.StatusOK, toJournalEntryDTOs(entries))
}

// GetDashboard returns the headline numbers.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Journal.Dashboard(r.Context(), engine.Today())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, DashboardDTO{
		BookingsThisMonth: stats.BookingsThisMonth,
		UpcomingBookings:  stats.UpcomingBookings,
		RevenueThisMonth:  stats.RevenueThisMonth.String(),
		RevenueLastMonth:  stats.RevenueLastMonth.String(),
		RevenueChangePct:  stats.RevenueChangePct,
		AvgBookingsPerDay: stats.AvgBookingsPerDay,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case engine.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case engine.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Logger.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
