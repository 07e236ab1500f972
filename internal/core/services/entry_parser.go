package services

import (
	"fmt"
	"strings"

	"github.com/SscSPs/income_converter/internal/apperrors"
	"github.com/SscSPs/income_converter/internal/core/domain"
	"github.com/SscSPs/income_converter/internal/core/ports"
	"github.com/shopspring/decimal"
)

// EntryParser turns raw records into income entries. It remembers the last
// explicitly chosen currency and uses it for amounts that carry none.
type EntryParser struct {
	dates           ports.DateParser
	defaultCurrency domain.CurrencyCode
}

// NewEntryParser creates a new EntryParser starting with the given default currency.
func NewEntryParser(dates ports.DateParser, defaultCurrency domain.CurrencyCode) *EntryParser {
	return &EntryParser{
		dates:           dates,
		defaultCurrency: defaultCurrency,
	}
}

// DefaultCurrency returns the currency applied to amounts without one.
func (p *EntryParser) DefaultCurrency() domain.CurrencyCode {
	return p.defaultCurrency
}

// Parse validates raw and builds an IncomeEntry.
func (p *EntryParser) Parse(raw domain.RawEntry) (domain.IncomeEntry, error) {
	date, err := p.dates.ParseDate(raw.DateText)
	if err != nil {
		return domain.IncomeEntry{}, err
	}

	currency, err := p.ParseCurrency(raw.AmountText, raw.CurrencyText)
	if err != nil {
		return domain.IncomeEntry{}, err
	}

	amount, err := ParseAmount(domain.StripLetters(raw.AmountText))
	if err != nil {
		return domain.IncomeEntry{}, err
	}

	entry := domain.IncomeEntry{
		Position:   raw.Position,
		Amount:     amount,
		Currency:   currency,
		IncomeDate: date,
	}
	if err := entry.Validate(); err != nil {
		return domain.IncomeEntry{}, fmt.Errorf("%w: %v", apperrors.ErrMalformedRecord, err)
	}
	return entry, nil
}

// ParseCurrency picks the currency of a record from the letters of the currency
// column or, failing that, the letters glued to the amount. With no letters at
// all the current default applies. A valid explicit currency becomes the new default.
func (p *EntryParser) ParseCurrency(amountText, currencyText string) (domain.CurrencyCode, error) {
	fromColumn := domain.ExtractCurrencyToken(currencyText)
	fromAmount := domain.ExtractCurrencyToken(amountText)

	token := fromColumn
	switch {
	case fromColumn != "" && fromAmount != "" && fromColumn != fromAmount:
		return "", fmt.Errorf("%w: amount %q conflicts with currency %q", apperrors.ErrMalformedRecord, amountText, currencyText)
	case token == "":
		token = fromAmount
	}
	if token == "" {
		return p.defaultCurrency, nil
	}

	currency, err := domain.ParseCurrencyCode(token)
	if err != nil {
		return "", err
	}
	p.defaultCurrency = currency
	return currency, nil
}

// ParseAmount reads a decimal amount. Spaces are ignored and a decimal comma is accepted.
// When both "," and "." appear the last one is the decimal separator and the other
// may only group thousands: "1,234.56" and "1.234,56" are both 1234.56.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", apperrors.ErrInvalidAmount)
	}
	normalized, ok := normalizeSeparators(s)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: ambiguous separators in %q", apperrors.ErrInvalidAmount, s)
	}
	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", apperrors.ErrInvalidAmount, s)
	}
	return amount, nil
}

// normalizeSeparators rewrites s so that "." is the only separator left.
func normalizeSeparators(s string) (string, bool) {
	lastComma, lastDot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case lastComma < 0:
		return s, true
	case lastDot < 0:
		if strings.Count(s, ",") == 1 {
			return strings.Replace(s, ",", ".", 1), true
		}
		return ungroup(s, ",")
	}

	decimalSep, groupSep, cut := ".", ",", lastDot
	if lastComma > lastDot {
		decimalSep, groupSep, cut = ",", ".", lastComma
	}
	whole, frac := s[:cut], s[cut+1:]
	if strings.Contains(whole, decimalSep) {
		return "", false
	}
	whole, ok := ungroup(whole, groupSep)
	if !ok {
		return "", false
	}
	return whole + "." + frac, true
}

// ungroup drops sep from s when it splits s into thousands groups.
func ungroup(s, sep string) (string, bool) {
	groups := strings.Split(s, sep)
	head := strings.TrimLeft(groups[0], "+-")
	if len(head) == 0 || len(head) > 3 {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", false
		}
	}
	return strings.Join(groups, ""), true
}
