package ports

import (
	"context"
	"time"

	"github.com/SscSPs/income_converter/internal/core/domain"
)

// RateFetcher looks up the rate published for exactly one day.
//
// Implementations return apperrors.ErrRateNotPublished when the service has no
// rate for that day, an apperrors.ErrRateServiceFailure for transport problems
// and apperrors.ErrMalformedRateResponse when the payload is not exactly one record.
type RateFetcher interface {
	FetchRate(ctx context.Context, currency domain.CurrencyCode, day time.Time) (domain.RateResult, error)
}

// RateResolver finds the rate applicable on a date, falling back to earlier business days.
type RateResolver interface {
	Resolve(ctx context.Context, currency domain.CurrencyCode, date time.Time) (domain.RateResult, error)
}
