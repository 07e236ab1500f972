package handlers

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/SscSPs/income_converter/internal/apperrors"
	"github.com/SscSPs/income_converter/internal/core/domain"
)

// BatchSource reads "date; amount; currency" records from a semicolon separated file.
// The currency column may be omitted when the amount carries it ("100USD").
// It implements ports.EntrySource and ports.EntryObserver.
type BatchSource struct {
	reader  *csv.Reader
	console *Console
	started bool
}

// NewBatchSource creates a source reading records from r.
func NewBatchSource(r io.Reader, console *Console) *BatchSource {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	return &BatchSource{reader: cr, console: console}
}

// Next implements ports.EntrySource. Rows with a bad shape are returned as
// apperrors.ErrMalformedRecord errors carrying their position so the caller can skip them.
func (s *BatchSource) Next(ctx context.Context) (domain.RawEntry, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.RawEntry{}, err
		}

		rec, err := s.reader.Read()
		if errors.Is(err, io.EOF) {
			return domain.RawEntry{}, io.EOF
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			raw := domain.RawEntry{Position: parseErr.StartLine}
			return raw, fmt.Errorf("%w: %v", apperrors.ErrMalformedRecord, parseErr.Err)
		}
		if err != nil {
			return domain.RawEntry{}, fmt.Errorf("failed to read income file: %w", err)
		}

		line, _ := s.reader.FieldPos(0)
		first := !s.started
		s.started = true
		if first && strings.EqualFold(strings.TrimSpace(rec[0]), "date") {
			continue
		}

		raw := domain.RawEntry{Position: line}
		switch len(rec) {
		case 2:
			raw.DateText, raw.AmountText = strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		case 3:
			raw.DateText, raw.AmountText, raw.CurrencyText = strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1]), strings.TrimSpace(rec[2])
		default:
			return raw, fmt.Errorf("%w: expected 3 fields (date; amount; currency), got %d", apperrors.ErrMalformedRecord, len(rec))
		}
		return raw, nil
	}
}

// Recorded implements ports.EntryObserver.
func (s *BatchSource) Recorded(conv domain.Conversion) {
	s.console.Printf("row %d: ", conv.Entry.Position)
	s.console.Conversion(conv)
}

// Rejected implements ports.EntryObserver.
func (s *BatchSource) Rejected(raw domain.RawEntry, err error) {
	s.console.Error("row %d: %v", raw.Position, err)
}
