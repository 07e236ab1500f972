package domain

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/SscSPs/income_converter/internal/apperrors"
)

// CurrencyCode is a 3-letter ISO 4217 code of a currency published in the NBP table A.
type CurrencyCode string

// SupportedCurrencies lists the currencies accepted by the converter, in report order.
var SupportedCurrencies = []CurrencyCode{
	"USD", "AUD", "HKD", "CAD", "NZD", "SGD", "EUR", "HUF", "CHF", "GBP", "UAH",
	"JPY", "CZK", "DKK", "ISK", "NOK", "SEK", "HRK", "RON", "BGN", "RUB", "CNY",
}

var supportedSet = func() map[CurrencyCode]struct{} {
	m := make(map[CurrencyCode]struct{}, len(SupportedCurrencies))
	for _, c := range SupportedCurrencies {
		m[c] = struct{}{}
	}
	return m
}()

// IsSupported reports whether c belongs to the allowlist.
func (c CurrencyCode) IsSupported() bool {
	_, ok := supportedSet[c]
	return ok
}

func (c CurrencyCode) String() string {
	return string(c)
}

// ParseCurrencyCode upper-cases s and checks it against the allowlist.
func ParseCurrencyCode(s string) (CurrencyCode, error) {
	code := CurrencyCode(strings.ToUpper(strings.TrimSpace(s)))
	if !code.IsSupported() {
		return "", fmt.Errorf("%w: %q (expected an ISO 4217 code, see https://en.wikipedia.org/wiki/ISO_4217)", apperrors.ErrUnknownCurrency, s)
	}
	return code, nil
}

// ExtractCurrencyToken keeps only the letters of s, upper-cased.
// "100usd" gives "USD", "12.50" gives "".
func ExtractCurrencyToken(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// StripLetters returns s without any letters. It is the numeric half of an
// amount token such as "100USD".
func StripLetters(s string) string {
	var b strings.Builder
	for _, r := range s {
		if !unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
