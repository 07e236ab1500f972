package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/income_converter/internal/apperrors"
	"github.com/SscSPs/income_converter/internal/core/domain"
	"github.com/SscSPs/income_converter/internal/core/ports"
	"github.com/shopspring/decimal"
)

// ReportEpsilon is the magnitude at or below which a currency total is left out of the breakdown.
var ReportEpsilon = decimal.New(1, -3)

// IncomeAccumulator converts income entries to the local currency and keeps
// a running total per currency. Entries are never removed once recorded.
type IncomeAccumulator struct {
	BaseService
	resolver ports.RateResolver
	totals   map[domain.CurrencyCode]decimal.Decimal
	recorded int
}

// NewIncomeAccumulator creates an accumulator with a zero total for every supported currency.
func NewIncomeAccumulator(resolver ports.RateResolver) *IncomeAccumulator {
	totals := make(map[domain.CurrencyCode]decimal.Decimal, len(domain.SupportedCurrencies))
	for _, c := range domain.SupportedCurrencies {
		totals[c] = decimal.Zero
	}
	return &IncomeAccumulator{
		resolver: resolver,
		totals:   totals,
	}
}

// Record converts entry using the rate applicable on the day before its income
// date and adds the result to the currency's total. On error the totals are untouched.
func (a *IncomeAccumulator) Record(ctx context.Context, entry domain.IncomeEntry) (domain.Conversion, error) {
	if !entry.Currency.IsSupported() {
		return domain.Conversion{}, fmt.Errorf("%w: %q", apperrors.ErrUnknownCurrency, entry.Currency)
	}

	res, err := a.resolver.Resolve(ctx, entry.Currency, entry.RateDate())
	if err != nil {
		return domain.Conversion{}, fmt.Errorf("failed to resolve %s rate for %s: %w",
			entry.Currency, domain.FormatISODate(entry.IncomeDate), err)
	}

	local := entry.Amount.Mul(res.Rate)
	a.totals[entry.Currency] = a.totals[entry.Currency].Add(local)
	a.recorded++

	a.LogDebug(ctx, "Income recorded",
		slog.Int("position", entry.Position),
		slog.String("currency", entry.Currency.String()),
		slog.String("amount", entry.Amount.String()),
		slog.String("rate", res.Rate.String()),
		slog.String("effective_date", domain.FormatISODate(res.EffectiveDate)),
		slog.String("local_amount", local.String()))

	return domain.Conversion{
		Entry:         entry,
		Rate:          res.Rate,
		EffectiveDate: res.EffectiveDate,
		LocalAmount:   local,
	}, nil
}

// Recorded returns the number of entries recorded so far.
func (a *IncomeAccumulator) Recorded() int {
	return a.recorded
}

// Total returns the accumulated local amount for one currency.
func (a *IncomeAccumulator) Total(currency domain.CurrencyCode) decimal.Decimal {
	return a.totals[currency]
}

// GrandTotal returns the sum of all currency totals.
func (a *IncomeAccumulator) GrandTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range a.totals {
		sum = sum.Add(v)
	}
	return sum
}

// Report returns the grand total and the non-negligible per-currency totals,
// in the order of domain.SupportedCurrencies.
func (a *IncomeAccumulator) Report() domain.Report {
	report := domain.Report{
		GrandTotal: a.GrandTotal(),
		Breakdown:  []domain.CurrencyTotal{},
	}
	for _, c := range domain.SupportedCurrencies {
		v := a.totals[c]
		if v.Abs().GreaterThan(ReportEpsilon) {
			report.Breakdown = append(report.Breakdown, domain.CurrencyTotal{Currency: c, Amount: v})
		}
	}
	return report
}
