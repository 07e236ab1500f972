package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/income_converter/internal/apperrors"
	"github.com/SscSPs/income_converter/internal/core/domain"
	"github.com/SscSPs/income_converter/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type IncomeAccumulatorTestSuite struct {
	suite.Suite
	resolver    *MockRateResolver
	accumulator *services.IncomeAccumulator
	ctx         context.Context
}

func (suite *IncomeAccumulatorTestSuite) SetupTest() {
	suite.resolver = new(MockRateResolver)
	suite.accumulator = services.NewIncomeAccumulator(suite.resolver)
	suite.ctx = context.Background()
}

func entry(amount string, currency domain.CurrencyCode, incomeDate time.Time) domain.IncomeEntry {
	return domain.IncomeEntry{
		Amount:     decimal.RequireFromString(amount),
		Currency:   currency,
		IncomeDate: incomeDate,
	}
}

func (suite *IncomeAccumulatorTestSuite) TestRecord_QueriesTheDayBeforeIncome() {
	suite.resolver.On("Resolve", suite.ctx, domain.CurrencyCode("USD"), day(2016, 9, 12)).
		Return(rateOn("3.8687", day(2016, 9, 12)), nil).Once()

	conv, err := suite.accumulator.Record(suite.ctx, entry("100", "USD", day(2016, 9, 13)))

	suite.Require().NoError(err)
	suite.Equal("386.87", conv.LocalAmount.String())
	suite.Equal(day(2016, 9, 12), conv.EffectiveDate)
	suite.resolver.AssertExpectations(suite.T())
	suite.resolver.AssertNotCalled(suite.T(), "Resolve", suite.ctx, domain.CurrencyCode("USD"), day(2016, 9, 13))
}

func (suite *IncomeAccumulatorTestSuite) TestRecord_AccumulatesPerCurrency() {
	suite.resolver.On("Resolve", suite.ctx, domain.CurrencyCode("USD"), mock.AnythingOfType("time.Time")).
		Return(rateOn("4", day(2016, 9, 9)), nil)
	suite.resolver.On("Resolve", suite.ctx, domain.CurrencyCode("CHF"), mock.AnythingOfType("time.Time")).
		Return(rateOn("3.9444", day(2016, 9, 9)), nil)

	_, err := suite.accumulator.Record(suite.ctx, entry("10", "USD", day(2016, 9, 10)))
	suite.Require().NoError(err)
	_, err = suite.accumulator.Record(suite.ctx, entry("20", "USD", day(2016, 9, 12)))
	suite.Require().NoError(err)
	_, err = suite.accumulator.Record(suite.ctx, entry("1", "CHF", day(2016, 9, 10)))
	suite.Require().NoError(err)

	suite.Equal("120", suite.accumulator.Total("USD").String())
	suite.Equal("3.9444", suite.accumulator.Total("CHF").String())
	suite.Equal("123.9444", suite.accumulator.GrandTotal().String())
	suite.Equal(3, suite.accumulator.Recorded())
}

func (suite *IncomeAccumulatorTestSuite) TestRecord_FailureLeavesTotalsUntouched() {
	suite.resolver.On("Resolve", suite.ctx, domain.CurrencyCode("USD"), day(2016, 9, 12)).
		Return(rateOn("3.8687", day(2016, 9, 12)), nil).Once()
	suite.resolver.On("Resolve", suite.ctx, domain.CurrencyCode("USD"), day(2016, 9, 13)).
		Return(domain.RateResult{}, apperrors.NewServiceFailure("GET", nil)).Once()

	_, err := suite.accumulator.Record(suite.ctx, entry("100", "USD", day(2016, 9, 13)))
	suite.Require().NoError(err)

	_, err = suite.accumulator.Record(suite.ctx, entry("50", "USD", day(2016, 9, 14)))
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRateServiceFailure)

	suite.Equal("386.87", suite.accumulator.Total("USD").String())
	suite.Equal(1, suite.accumulator.Recorded())
}

func (suite *IncomeAccumulatorTestSuite) TestRecord_RejectsUnknownCurrency() {
	_, err := suite.accumulator.Record(suite.ctx, entry("1", "PLN", day(2016, 9, 13)))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnknownCurrency)
	suite.resolver.AssertNumberOfCalls(suite.T(), "Resolve", 0)
}

func (suite *IncomeAccumulatorTestSuite) TestReport_OmitsNegligibleTotals() {
	suite.resolver.On("Resolve", suite.ctx, domain.CurrencyCode("EUR"), mock.AnythingOfType("time.Time")).
		Return(rateOn("4.3129", day(2016, 9, 9)), nil)
	suite.resolver.On("Resolve", suite.ctx, domain.CurrencyCode("JPY"), mock.AnythingOfType("time.Time")).
		Return(rateOn("0.0001", day(2016, 9, 9)), nil)
	suite.resolver.On("Resolve", suite.ctx, domain.CurrencyCode("USD"), mock.AnythingOfType("time.Time")).
		Return(rateOn("3.8385", day(2016, 9, 9)), nil)

	// JPY ends at exactly 0.001 and is omitted.
	for _, e := range []domain.IncomeEntry{
		entry("10", "USD", day(2016, 9, 10)),
		entry("10", "JPY", day(2016, 9, 10)),
		entry("100", "EUR", day(2016, 9, 10)),
	} {
		_, err := suite.accumulator.Record(suite.ctx, e)
		suite.Require().NoError(err)
	}

	report := suite.accumulator.Report()
	suite.Equal("469.676", report.GrandTotal.String())
	suite.Require().Len(report.Breakdown, 2)
	suite.Equal(domain.CurrencyCode("USD"), report.Breakdown[0].Currency)
	suite.Equal("38.385", report.Breakdown[0].Amount.String())
	suite.Equal(domain.CurrencyCode("EUR"), report.Breakdown[1].Currency)
	suite.Equal("431.29", report.Breakdown[1].Amount.String())
}

func (suite *IncomeAccumulatorTestSuite) TestReport_EmptyRun() {
	report := suite.accumulator.Report()
	suite.True(report.GrandTotal.IsZero())
	suite.Empty(report.Breakdown)
}

func TestIncomeAccumulatorTestSuite(t *testing.T) {
	suite.Run(t, new(IncomeAccumulatorTestSuite))
}

func TestIncomeAccumulator_OrderIndependent(t *testing.T) {
	ctx := context.Background()
	rates := map[time.Time]string{
		day(2016, 9, 9):  "3.8385",
		day(2016, 9, 12): "3.8687",
	}
	newAccumulator := func() *services.IncomeAccumulator {
		resolver := new(MockRateResolver)
		for d, mid := range rates {
			resolver.On("Resolve", ctx, domain.CurrencyCode("USD"), d).Return(rateOn(mid, d), nil)
		}
		return services.NewIncomeAccumulator(resolver)
	}
	entries := []domain.IncomeEntry{
		entry("10", "USD", day(2016, 9, 10)),
		entry("20", "USD", day(2016, 9, 13)),
	}

	forward := newAccumulator()
	for _, e := range entries {
		_, err := forward.Record(ctx, e)
		if err != nil {
			t.Fatal(err)
		}
	}
	backward := newAccumulator()
	for i := len(entries) - 1; i >= 0; i-- {
		_, err := backward.Record(ctx, entries[i])
		if err != nil {
			t.Fatal(err)
		}
	}

	if !forward.Total("USD").Equal(backward.Total("USD")) {
		t.Fatalf("totals differ: %s vs %s", forward.Total("USD"), backward.Total("USD"))
	}
}
