package nbp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/income_converter/internal/apperrors"
	"github.com/SscSPs/income_converter/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const limiterKey = "nbp"

// Config holds the settings of the NBP rate client.
type Config struct {
	BaseURL   string        // e.g. https://api.nbp.pl/api
	Table     string        // NBP table, "A" for the daily mid rates
	Timeout   time.Duration // per request
	RateLimit string        // limiter format, e.g. "10-S"
}

// Client fetches daily mid rates from the NBP web API.
// It implements ports.RateFetcher.
type Client struct {
	baseURL    string
	table      string
	httpClient *http.Client
	limiter    *limiter.Limiter
	logger     *slog.Logger
}

// ratesResponse mirrors GET /exchangerates/rates/{table}/{code}/{date}/?format=json
// Example: {"table":"A","currency":"dolar amerykański","code":"USD","rates":[{"no":"176/A/NBP/2016","effectiveDate":"2016-09-13","mid":3.8734}]}
type ratesResponse struct {
	Table    string       `json:"table"`
	Currency string       `json:"currency"`
	Code     string       `json:"code"`
	Rates    []rateRecord `json:"rates"`
}

type rateRecord struct {
	No            string          `json:"no"`
	EffectiveDate string          `json:"effectiveDate"`
	Mid           decimal.Decimal `json:"mid"`
}

// NewClient creates a new NBP client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("nbp base URL cannot be empty")
	}
	if cfg.Table == "" {
		cfg.Table = "A"
	}
	if logger == nil {
		logger = slog.Default()
	}

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", cfg.RateLimit, err)
	}

	return &Client{
		baseURL: cfg.BaseURL,
		table:   cfg.Table,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: limiter.New(memory.NewStore(), rate),
		logger:  logger,
	}, nil
}

// FetchRate returns the mid rate published for exactly the given day.
func (c *Client) FetchRate(ctx context.Context, currency domain.CurrencyCode, day time.Time) (domain.RateResult, error) {
	date := domain.FormatISODate(day)
	url := fmt.Sprintf("%s/exchangerates/rates/%s/%s/%s/?format=json", c.baseURL, c.table, currency, date)

	if err := c.throttle(ctx); err != nil {
		return domain.RateResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.RateResult{}, apperrors.NewServiceFailure("failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Cancellation of the run is not a service failure.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.RateResult{}, ctxErr
		}
		return domain.RateResult{}, apperrors.NewServiceFailure("GET "+url, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.DebugContext(ctx, "No rate published",
			slog.String("currency", currency.String()),
			slog.String("date", date))
		return domain.RateResult{}, fmt.Errorf("%w: %s %s", apperrors.ErrRateNotPublished, currency, date)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.RateResult{}, apperrors.NewServiceFailure(
			fmt.Sprintf("GET %s returned status %d", url, resp.StatusCode),
			errors.New(string(body)))
	}

	var apiResp ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.RateResult{}, ctxErr
		}
		return domain.RateResult{}, apperrors.NewServiceFailure("failed to decode response for "+currency.String()+" "+date, err)
	}

	result, err := toRateResult(apiResp, day)
	if err != nil {
		return domain.RateResult{}, err
	}
	c.logger.DebugContext(ctx, "Rate fetched",
		slog.String("currency", currency.String()),
		slog.String("date", date),
		slog.String("table_no", result.TableNo),
		slog.String("mid", result.Rate.String()))
	return result, nil
}

func toRateResult(apiResp ratesResponse, day time.Time) (domain.RateResult, error) {
	if len(apiResp.Rates) != 1 {
		return domain.RateResult{}, apperrors.NewMalformedResponse(
			fmt.Sprintf("expected exactly one rate record for %s, got %d", domain.FormatISODate(day), len(apiResp.Rates)))
	}
	rec := apiResp.Rates[0]
	if !rec.Mid.IsPositive() {
		return domain.RateResult{}, apperrors.NewMalformedResponse(fmt.Sprintf("non-positive mid rate %s", rec.Mid))
	}
	if rec.EffectiveDate != "" && rec.EffectiveDate != domain.FormatISODate(day) {
		return domain.RateResult{}, apperrors.NewMalformedResponse(
			fmt.Sprintf("rate record dated %s, requested %s", rec.EffectiveDate, domain.FormatISODate(day)))
	}
	return domain.RateResult{
		Rate:          rec.Mid,
		EffectiveDate: domain.Day(day),
		TableNo:       rec.No,
	}, nil
}

// throttle blocks until the outbound limiter lets another request through.
func (c *Client) throttle(ctx context.Context) error {
	for {
		lctx, err := c.limiter.Get(ctx, limiterKey)
		if err != nil {
			return apperrors.NewServiceFailure("rate limiter unavailable", err)
		}
		if !lctx.Reached {
			return nil
		}
		delay := time.Until(time.Unix(lctx.Reset, 0))
		if delay <= 0 {
			delay = 50 * time.Millisecond
		}
		c.logger.DebugContext(ctx, "Throttling rate service requests", slog.Duration("delay", delay))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
