package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/income_converter/internal/apperrors"
	"github.com/SscSPs/income_converter/internal/core/domain"
	"github.com/SscSPs/income_converter/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock RateResolver ---
type MockRateResolver struct {
	mock.Mock
}

func (m *MockRateResolver) Resolve(ctx context.Context, currency domain.CurrencyCode, date time.Time) (domain.RateResult, error) {
	args := m.Called(ctx, currency, date)
	return args.Get(0).(domain.RateResult), args.Error(1)
}

func TestCachedRateResolver_ReusesSuccessfulResolutions(t *testing.T) {
	ctx := context.Background()
	next := new(MockRateResolver)
	next.On("Resolve", ctx, domain.CurrencyCode("USD"), day(2016, 9, 11)).
		Return(rateOn("3.8385", day(2016, 9, 9)), nil).Once()

	resolver, err := services.NewCachedRateResolver(next, 8)
	require.NoError(t, err)

	first, err := resolver.Resolve(ctx, "USD", day(2016, 9, 11))
	require.NoError(t, err)
	second, err := resolver.Resolve(ctx, "USD", time.Date(2016, 9, 11, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, day(2016, 9, 9), second.EffectiveDate)
	next.AssertNumberOfCalls(t, "Resolve", 1)
	assert.Equal(t, 1, resolver.(*services.CachedRateResolver).Len())
}

func TestCachedRateResolver_DoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	next := new(MockRateResolver)
	next.On("Resolve", ctx, domain.CurrencyCode("USD"), day(2016, 9, 13)).
		Return(domain.RateResult{}, apperrors.NewServiceFailure("GET", nil)).Once()
	next.On("Resolve", ctx, domain.CurrencyCode("USD"), day(2016, 9, 13)).
		Return(rateOn("3.8734", day(2016, 9, 13)), nil).Once()

	resolver, err := services.NewCachedRateResolver(next, 8)
	require.NoError(t, err)

	_, err = resolver.Resolve(ctx, "USD", day(2016, 9, 13))
	require.ErrorIs(t, err, apperrors.ErrRateServiceFailure)

	res, err := resolver.Resolve(ctx, "USD", day(2016, 9, 13))
	require.NoError(t, err)
	assert.Equal(t, "3.8734", res.Rate.String())
	next.AssertExpectations(t)
}

func TestCachedRateResolver_KeyedByCurrencyAndDate(t *testing.T) {
	ctx := context.Background()
	next := new(MockRateResolver)
	next.On("Resolve", ctx, domain.CurrencyCode("USD"), day(2016, 9, 9)).
		Return(rateOn("3.8385", day(2016, 9, 9)), nil).Once()
	next.On("Resolve", ctx, domain.CurrencyCode("CHF"), day(2016, 9, 9)).
		Return(rateOn("3.9444", day(2016, 9, 9)), nil).Once()
	next.On("Resolve", ctx, domain.CurrencyCode("USD"), day(2016, 9, 13)).
		Return(rateOn("3.8734", day(2016, 9, 13)), nil).Once()

	resolver, err := services.NewCachedRateResolver(next, 8)
	require.NoError(t, err)

	for _, q := range []domain.RateQuery{
		{Currency: "USD", Date: day(2016, 9, 9)},
		{Currency: "CHF", Date: day(2016, 9, 9)},
		{Currency: "USD", Date: day(2016, 9, 13)},
		{Currency: "CHF", Date: day(2016, 9, 9)},
	} {
		_, err := resolver.Resolve(ctx, q.Currency, q.Date)
		require.NoError(t, err, q.String())
	}
	next.AssertExpectations(t)
}

func TestNewCachedRateResolver_DisabledReturnsNext(t *testing.T) {
	next := new(MockRateResolver)
	resolver, err := services.NewCachedRateResolver(next, 0)
	require.NoError(t, err)
	assert.Same(t, next, resolver)
}
