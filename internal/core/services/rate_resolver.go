package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/income_converter/internal/apperrors"
	"github.com/SscSPs/income_converter/internal/core/domain"
	"github.com/SscSPs/income_converter/internal/core/ports"
	"github.com/cenkalti/backoff/v4"
)

// DefaultMaxLookbackDays bounds the backward walk when no value is configured.
const DefaultMaxLookbackDays = 10

// RateResolverService finds the rate applicable on a date by walking back one
// day at a time until the rate service reports a published rate.
type RateResolverService struct {
	BaseService
	fetcher         ports.RateFetcher
	maxLookbackDays int
	serviceRetries  int
	newBackOff      func() backoff.BackOff
}

// ResolverOption customises a RateResolverService.
type ResolverOption func(*RateResolverService)

// WithBackOff overrides the backoff policy used between retries of a failed request.
func WithBackOff(newBackOff func() backoff.BackOff) ResolverOption {
	return func(s *RateResolverService) {
		s.newBackOff = newBackOff
	}
}

// NewRateResolverService creates a new RateResolverService.
// maxLookbackDays is the number of days before the query date that may be tried;
// serviceRetries is the number of extra attempts for the same day after a service failure.
func NewRateResolverService(fetcher ports.RateFetcher, maxLookbackDays, serviceRetries int, opts ...ResolverOption) *RateResolverService {
	if maxLookbackDays <= 0 {
		maxLookbackDays = DefaultMaxLookbackDays
	}
	if serviceRetries < 0 {
		serviceRetries = 0
	}
	s := &RateResolverService{
		fetcher:         fetcher,
		maxLookbackDays: maxLookbackDays,
		serviceRetries:  serviceRetries,
		newBackOff:      defaultBackOff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// Resolve returns the rate published for date or, when there is none, for the
// most recent earlier day that has one. It never looks forward.
//
// Only "no rate published" moves the walk to the previous day. Service failures
// are retried for the same day and then surfaced as apperrors.ErrRateServiceFailure.
func (s *RateResolverService) Resolve(ctx context.Context, currency domain.CurrencyCode, date time.Time) (domain.RateResult, error) {
	if !currency.IsSupported() {
		return domain.RateResult{}, fmt.Errorf("%w: %q", apperrors.ErrUnknownCurrency, currency)
	}

	query := domain.Day(date)
	candidate := query
	for step := 0; step <= s.maxLookbackDays; step++ {
		if err := ctx.Err(); err != nil {
			return domain.RateResult{}, err
		}

		res, err := s.fetchWithRetry(ctx, currency, candidate)
		switch {
		case err == nil:
			if step > 0 {
				s.LogDebug(ctx, "Rate resolved on an earlier business day",
					slog.String("currency", currency.String()),
					slog.String("query_date", domain.FormatISODate(query)),
					slog.String("effective_date", domain.FormatISODate(res.EffectiveDate)))
			}
			return res, nil
		case errors.Is(err, apperrors.ErrRateNotPublished):
			candidate = candidate.AddDate(0, 0, -1)
		default:
			return domain.RateResult{}, err
		}
	}

	return domain.RateResult{}, apperrors.NewAppError(apperrors.ErrRateNotFoundExhausted,
		fmt.Sprintf("no %s rate published between %s and %s",
			currency, domain.FormatISODate(query.AddDate(0, 0, -s.maxLookbackDays)), domain.FormatISODate(query)),
		nil)
}

// fetchWithRetry asks the fetcher for a single day, retrying service failures with backoff.
func (s *RateResolverService) fetchWithRetry(ctx context.Context, currency domain.CurrencyCode, day time.Time) (domain.RateResult, error) {
	var res domain.RateResult
	attempt := 0
	op := func() error {
		attempt++
		r, err := s.fetcher.FetchRate(ctx, currency, day)
		if err == nil {
			res = r
			return nil
		}
		if errors.Is(err, apperrors.ErrRateServiceFailure) {
			s.LogWarn(ctx, err, "Rate service failure",
				slog.String("currency", currency.String()),
				slog.String("date", domain.FormatISODate(day)),
				slog.Int("attempt", attempt))
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), uint64(s.serviceRetries)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return domain.RateResult{}, err
	}
	return res, nil
}
