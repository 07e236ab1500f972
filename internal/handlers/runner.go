package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/SscSPs/income_converter/internal/apperrors"
	"github.com/SscSPs/income_converter/internal/core/domain"
	"github.com/SscSPs/income_converter/internal/core/ports"
	"github.com/SscSPs/income_converter/internal/core/services"
)

// RunStats summarises a processing run.
type RunStats struct {
	Recorded int
	Skipped  int
}

// Source is an entry source that also wants to hear about outcomes.
type Source interface {
	ports.EntrySource
	ports.EntryObserver
}

// Runner drains a source into an accumulator, one entry at a time.
type Runner struct {
	services.BaseService
	source      Source
	parser      *services.EntryParser
	accumulator *services.IncomeAccumulator
}

// NewRunner creates a new Runner.
func NewRunner(source Source, parser *services.EntryParser, accumulator *services.IncomeAccumulator) *Runner {
	return &Runner{
		source:      source,
		parser:      parser,
		accumulator: accumulator,
	}
}

// Run processes every entry of the source. Bad entries are reported to the
// source and skipped; the run only stops early on cancellation or an input
// read failure, in which case the in-flight entry is not recorded.
func (r *Runner) Run(ctx context.Context) (RunStats, error) {
	var stats RunStats

	for {
		raw, err := r.source.Next(ctx)
		switch {
		case errors.Is(err, io.EOF):
			r.LogInfo(ctx, "Input exhausted",
				slog.Int("recorded", stats.Recorded),
				slog.Int("skipped", stats.Skipped))
			return stats, nil
		case errors.Is(err, apperrors.ErrMalformedRecord):
			r.reject(ctx, &stats, raw, err)
			continue
		case err != nil:
			if ctx.Err() == nil {
				r.LogError(ctx, err, "Failed to read input", slog.Int("recorded", stats.Recorded))
			}
			return stats, err
		}

		entry, err := r.parser.Parse(raw)
		if err != nil {
			r.reject(ctx, &stats, raw, err)
			continue
		}

		conv, err := r.accumulator.Record(ctx, entry)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return stats, ctxErr
			}
			r.reject(ctx, &stats, raw, err)
			continue
		}
		stats.Recorded++
		r.source.Recorded(conv)
	}
}

func (r *Runner) reject(ctx context.Context, stats *RunStats, raw domain.RawEntry, err error) {
	stats.Skipped++
	level := slog.LevelWarn
	if apperrors.IsEntryError(err) {
		level = slog.LevelInfo
	}
	r.GetLogger(ctx).Log(ctx, level, "Entry skipped",
		slog.Int("position", raw.Position),
		slog.String("error", err.Error()))
	r.source.Rejected(raw, err)
}
