package domain

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RawEntry is an untyped income record as produced by an input source.
type RawEntry struct {
	Position     int    // line or row number in the source, 1-based
	DateText     string // free-text date
	AmountText   string // amount, possibly with the currency glued on ("100USD")
	CurrencyText string // optional separate currency column
}

// IncomeEntry is a single validated income: amount in a foreign currency earned on a given day.
type IncomeEntry struct {
	Position   int             `json:"position"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   CurrencyCode    `json:"currency" validate:"required,currency"`
	IncomeDate time.Time       `json:"incomeDate" validate:"required"`
}

// RateDate returns the day whose rate applies to the income: the day before the income date.
// Rates are applied as of the preceding day, never the income day itself.
func (e IncomeEntry) RateDate() time.Time {
	return PreviousDay(e.IncomeDate)
}

var entryValidator = newEntryValidator()

func newEntryValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return CurrencyCode(fl.Field().String()).IsSupported()
	})
	return v
}

// Validate checks the entry's invariants.
func (e IncomeEntry) Validate() error {
	if err := entryValidator.Struct(e); err != nil {
		return fmt.Errorf("invalid income entry: %w", err)
	}
	return nil
}

// RateQuery asks for the rate of a currency on or before a date.
type RateQuery struct {
	Currency CurrencyCode
	Date     time.Time
}

func (q RateQuery) String() string {
	return fmt.Sprintf("%s@%s", q.Currency, FormatISODate(q.Date))
}

// RateResult is a published mid rate and the day it was published for.
type RateResult struct {
	Rate          decimal.Decimal `json:"rate"`
	EffectiveDate time.Time       `json:"effectiveDate"`
	TableNo       string          `json:"tableNo,omitempty"`
}

// Conversion describes one recorded income after conversion to the local currency.
type Conversion struct {
	Entry         IncomeEntry
	Rate          decimal.Decimal
	EffectiveDate time.Time
	LocalAmount   decimal.Decimal
}

// CurrencyTotal is one line of the per-currency breakdown.
type CurrencyTotal struct {
	Currency CurrencyCode    `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// Report is the final summary of a run.
type Report struct {
	GrandTotal decimal.Decimal `json:"grandTotal"`
	Breakdown  []CurrencyTotal `json:"breakdown"`
}
