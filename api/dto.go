/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Request types carry validator tags; handlers run them through a shared
  validator.Validate before touching domain logic.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/reconcile.go: PaymentSummary, the source of SummaryDTO
*/
package api

import (
	"time"

	"github.com/jmahadi/north-arena-webapp/engine"
	"github.com/jmahadi/north-arena-webapp/journal"
)

// =============================================================================
// BOOKINGS
// =============================================================================

// BookingDTO represents a booking in API responses.
type BookingDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	TimeSlot    string  `json:"time_slot"`
	Kind        string  `json:"kind"`
	Notes       string  `json:"notes,omitempty"`
	Cancelled   bool    `json:"cancelled"`
	CancelledAt *string `json:"cancelled_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// CreateBookingRequest books a single date or a recurring range.
// For single bookings only booking_date is set; ranges carry start_date,
// end_date and optionally days_of_week.
type CreateBookingRequest struct {
	Name        string   `json:"name" validate:"required"`
	Phone       string   `json:"phone" validate:"required"`
	TimeSlot    string   `json:"time_slot" validate:"required"`
	BookingDate string   `json:"booking_date,omitempty"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	DaysOfWeek  []string `json:"days_of_week,omitempty"`
	Kind        string   `json:"kind,omitempty" validate:"omitempty,oneof=NORMAL BULK ACADEMY"`
	Notes       string   `json:"notes,omitempty"`
}

// OccurrenceDTO is one concrete date+slot a booking holds.
type OccurrenceDTO struct {
	BookingID string `json:"booking_id"`
	Date      string `json:"date"`
	TimeSlot  string `json:"time_slot"`
}

// ConflictDTO reports a date that could not be booked.
type ConflictDTO struct {
	Date              string `json:"date"`
	TimeSlot          string `json:"time_slot"`
	ExistingBookingID string `json:"existing_booking_id,omitempty"`
}

// CreateBookingResponse reports what was booked and what collided.
type CreateBookingResponse struct {
	Booking   BookingDTO      `json:"booking"`
	Booked    []OccurrenceDTO `json:"booked"`
	Conflicts []ConflictDTO   `json:"conflicts,omitempty"`
	Total     string          `json:"total"`
}

// MatrixCellDTO is one occupied cell of the bookings matrix.
type MatrixCellDTO struct {
	BookingID string `json:"booking_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Date      string `json:"date"`
	TimeSlot  string `json:"time_slot"`
	Kind      string `json:"kind"`
}

// MatrixResponse is the calendar view: cells keyed "YYYY-MM-DD_<slot>".
type MatrixResponse struct {
	Start    string                   `json:"start"`
	End      string                   `json:"end"`
	Bookings map[string]MatrixCellDTO `json:"bookings"`
}

// =============================================================================
// SUMMARY AND TRANSACTIONS
// =============================================================================

// QuoteLineDTO is one priced occurrence.
type QuoteLineDTO struct {
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
	Price    string `json:"price"`
	Source   string `json:"source"`
}

// SummaryDTO is the derived payment state of a booking.
type SummaryDTO struct {
	TotalPrice       string            `json:"total_price"`
	Discount         string            `json:"discount"`
	NetAdjustment    string            `json:"net_adjustment"`
	EffectiveTotal   string            `json:"effective_total"`
	TotalPaid        string            `json:"total_paid"`
	Leftover         string            `json:"leftover"`
	RawLeftover      string            `json:"raw_leftover"`
	Status           string            `json:"status"`
	ByMethod         map[string]string `json:"by_method"`
	ByType           map[string]string `json:"by_type"`
	FirstPaymentDate *string           `json:"first_payment_date,omitempty"`
	Inconsistent     bool              `json:"inconsistent,omitempty"`
}

// TransactionDTO represents a ledger entry in API responses.
type TransactionDTO struct {
	ID        string  `json:"id"`
	BookingID string  `json:"booking_id"`
	Type      string  `json:"type"`
	Method    *string `json:"method,omitempty"`
	Amount    string  `json:"amount"`
	Sign      string  `json:"sign,omitempty"`
	CreatedBy string  `json:"created_by,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedBy string  `json:"updated_by,omitempty"`
	UpdatedAt *string `json:"updated_at,omitempty"`
}

// BookingSummaryResponse is the full reconciliation view of one booking.
type BookingSummaryResponse struct {
	Booking      BookingDTO       `json:"booking"`
	Occurrences  []OccurrenceDTO  `json:"occurrences"`
	Lines        []QuoteLineDTO   `json:"lines"`
	Summary      SummaryDTO       `json:"summary"`
	Transactions []TransactionDTO `json:"transactions"`
}

// RecordTransactionRequest appends a ledger entry to a booking.
type RecordTransactionRequest struct {
	Type      string `json:"type" validate:"required,oneof=BOOKING_PAYMENT SLOT_PAYMENT DISCOUNT OTHER_ADJUSTMENT"`
	Method    string `json:"method,omitempty" validate:"omitempty,oneof=CASH BKASH NAGAD CARD BANK_TRANSFER"`
	Amount    string `json:"amount" validate:"required"`
	Sign      string `json:"sign,omitempty" validate:"omitempty,oneof=CREDIT DEBIT"`
	CreatedBy string `json:"created_by,omitempty"`
}

// EditTransactionRequest corrects a ledger entry. Omitted fields keep
// their stored values; clear_method nulls the payment method.
type EditTransactionRequest struct {
	Type        *string `json:"type,omitempty" validate:"omitempty,oneof=BOOKING_PAYMENT SLOT_PAYMENT DISCOUNT OTHER_ADJUSTMENT"`
	Method      *string `json:"method,omitempty" validate:"omitempty,oneof=CASH BKASH NAGAD CARD BANK_TRANSFER"`
	ClearMethod bool    `json:"clear_method,omitempty"`
	Amount      *string `json:"amount,omitempty"`
	Sign        *string `json:"sign,omitempty" validate:"omitempty,oneof=CREDIT DEBIT"`
	UpdatedBy   string  `json:"updated_by,omitempty"`
}

// =============================================================================
// PRICING
// =============================================================================

// PriceRuleDTO represents a pricing rule in API responses.
type PriceRuleDTO struct {
	ID        string  `json:"id"`
	TimeSlot  string  `json:"time_slot"`
	Day       string  `json:"day_of_week"`
	Price     string  `json:"price"`
	IsDefault bool    `json:"is_default"`
	Temporary bool    `json:"temporary"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
}

// CreatePriceRuleRequest installs a default price or a temporary override.
type CreatePriceRuleRequest struct {
	TimeSlot  string `json:"time_slot" validate:"required"`
	Day       string `json:"day_of_week" validate:"required,oneof=SUNDAY MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY"`
	Price     string `json:"price" validate:"required"`
	IsDefault bool   `json:"is_default"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// =============================================================================
// JOURNAL AND DASHBOARD
// =============================================================================

// JournalEntryDTO is one line of the financial journal.
type JournalEntryDTO struct {
	Transaction TransactionDTO `json:"transaction"`
	Name        string         `json:"name"`
	Phone       string         `json:"phone"`
	TimeSlot    string         `json:"time_slot"`
	Cancelled   bool           `json:"cancelled"`
}

// DashboardDTO is the dashboard's headline row.
type DashboardDTO struct {
	BookingsThisMonth int     `json:"bookings_this_month"`
	UpcomingBookings  int     `json:"upcoming_bookings"`
	RevenueThisMonth  string  `json:"revenue_this_month"`
	RevenueLastMonth  string  `json:"revenue_last_month"`
	RevenueChangePct  float64 `json:"revenue_change"`
	AvgBookingsPerDay float64 `json:"avg_bookings_per_day"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toBookingDTO(b engine.Booking) BookingDTO {
	dto := BookingDTO{
		ID:        string(b.ID),
		Name:      b.Customer.Name,
		Phone:     b.Customer.Phone,
		TimeSlot:  string(b.TimeSlot),
		Kind:      string(b.Kind),
		Notes:     b.Notes,
		Cancelled: b.Cancelled,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
	if b.CancelledAt != nil {
		s := b.CancelledAt.Format(time.RFC3339)
		dto.CancelledAt = &s
	}
	return dto
}

func toOccurrenceDTOs(occs []engine.Occurrence) []OccurrenceDTO {
	dtos := make([]OccurrenceDTO, len(occs))
	for i, o := range occs {
		dtos[i] = OccurrenceDTO{
			BookingID: string(o.BookingID),
			Date:      o.Date.String(),
			TimeSlot:  string(o.TimeSlot),
		}
	}
	return dtos
}

func toConflictDTOs(conflicts []engine.SlotConflict) []ConflictDTO {
	dtos := make([]ConflictDTO, len(conflicts))
	for i, c := range conflicts {
		dtos[i] = ConflictDTO{
			Date:              c.Date.String(),
			TimeSlot:          string(c.TimeSlot),
			ExistingBookingID: string(c.ExistingBookingID),
		}
	}
	return dtos
}

func toQuoteLineDTOs(lines []engine.QuoteLine) []QuoteLineDTO {
	dtos := make([]QuoteLineDTO, len(lines))
	for i, l := range lines {
		dtos[i] = QuoteLineDTO{
			Date:     l.Date.String(),
			TimeSlot: string(l.TimeSlot),
			Price:    l.Price.String(),
			Source:   string(l.Source),
		}
	}
	return dtos
}

func toSummaryDTO(s engine.PaymentSummary) SummaryDTO {
	dto := SummaryDTO{
		TotalPrice:     s.TotalPrice.String(),
		Discount:       s.Discount.String(),
		NetAdjustment:  s.NetAdjustment.String(),
		EffectiveTotal: s.EffectiveTotal.String(),
		TotalPaid:      s.TotalPaid.String(),
		Leftover:       s.Leftover.String(),
		RawLeftover:    s.RawLeftover.String(),
		Status:         string(s.Status),
		ByMethod:       make(map[string]string, len(s.ByMethod)),
		ByType:         make(map[string]string, len(s.ByType)),
		Inconsistent:   s.Inconsistent,
	}
	for m, amt := range s.ByMethod {
		dto.ByMethod[string(m)] = amt.String()
	}
	for t, amt := range s.ByType {
		dto.ByType[string(t)] = amt.String()
	}
	if s.FirstPaymentDate != nil {
		d := s.FirstPaymentDate.String()
		dto.FirstPaymentDate = &d
	}
	return dto
}

func toTransactionDTO(tx engine.Transaction) TransactionDTO {
	dto := TransactionDTO{
		ID:        string(tx.ID),
		BookingID: string(tx.BookingID),
		Type:      string(tx.Type),
		Amount:    tx.Amount.String(),
		Sign:      string(tx.Sign),
		CreatedBy: tx.CreatedBy,
		CreatedAt: tx.CreatedAt.Format(time.RFC3339),
		UpdatedBy: tx.UpdatedBy,
	}
	if tx.Method != nil {
		m := string(*tx.Method)
		dto.Method = &m
	}
	if tx.UpdatedAt != nil {
		s := tx.UpdatedAt.Format(time.RFC3339)
		dto.UpdatedAt = &s
	}
	return dto
}

func toTransactionDTOs(txs []engine.Transaction) []TransactionDTO {
	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = toTransactionDTO(tx)
	}
	return dtos
}

func toSummaryResponse(s *engine.BookingSummary) BookingSummaryResponse {
	return BookingSummaryResponse{
		Booking:      toBookingDTO(s.Booking),
		Occurrences:  toOccurrenceDTOs(s.Occurrences),
		Lines:        toQuoteLineDTOs(s.Quote.Lines),
		Summary:      toSummaryDTO(s.Summary),
		Transactions: toTransactionDTOs(s.Transactions),
	}
}

func toPriceRuleDTO(r engine.PriceRule) PriceRuleDTO {
	dto := PriceRuleDTO{
		ID:        string(r.ID),
		TimeSlot:  string(r.TimeSlot),
		Day:       string(r.Day),
		Price:     r.Price.String(),
		IsDefault: r.IsDefault,
		Temporary: r.Validity.Temporary,
	}
	if !r.Validity.Start.IsZero() {
		s := r.Validity.Start.String()
		dto.StartDate = &s
	}
	if !r.Validity.End.IsZero() {
		s := r.Validity.End.String()
		dto.EndDate = &s
	}
	return dto
}

func toJournalEntryDTOs(entries []journal.Entry) []JournalEntryDTO {
	dtos := make([]JournalEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = JournalEntryDTO{
			Transaction: toTransactionDTO(e.Transaction),
			Name:        e.Customer.Name,
			Phone:       e.Customer.Phone,
			TimeSlot:    string(e.TimeSlot),
			Cancelled:   e.Cancelled,
		}
	}
	return dtos
}
