package services

import (
	"fmt"

	"github.com/SscSPs/income_converter/internal/core/domain"
	"github.com/SscSPs/income_converter/internal/core/ports"
	"github.com/SscSPs/income_converter/pkg/config"
)

// Container holds the services of one conversion run and their dependencies.
type Container struct {
	Resolver    ports.RateResolver
	Parser      *EntryParser
	Accumulator *IncomeAccumulator
}

// NewContainer creates a new service container with properly initialized dependencies
func NewContainer(cfg *config.Config, fetcher ports.RateFetcher, dates ports.DateParser, opts ...ResolverOption) (*Container, error) {
	// The cache sits in front of the backward walk so repeated days never reach the network.
	resolver, err := NewCachedRateResolver(
		NewRateResolverService(fetcher, cfg.MaxLookbackDays, cfg.ServiceRetries, opts...),
		cfg.RateCacheSize,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate cache: %w", err)
	}

	return &Container{
		Resolver:    resolver,
		Parser:      NewEntryParser(dates, domain.CurrencyCode(cfg.DefaultCurrency)),
		Accumulator: NewIncomeAccumulator(resolver),
	}, nil
}
