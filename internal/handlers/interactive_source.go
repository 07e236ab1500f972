package handlers

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/SscSPs/income_converter/internal/apperrors"
	"github.com/SscSPs/income_converter/internal/core/domain"
	"github.com/SscSPs/income_converter/internal/core/ports"
	"github.com/shopspring/decimal"
)

// exitToken ends the session at the date prompt and returns to it from the amount prompt.
const exitToken = "x"

// InteractiveSource reads income records from a prompt loop:
// a date (or x to finish), then an amount with optional currency (or x to re-enter the date).
// It implements ports.EntrySource and ports.EntryObserver.
type InteractiveSource struct {
	scanner         *bufio.Scanner
	console         *Console
	dates           ports.DateParser
	total           func() decimal.Decimal
	defaultCurrency func() domain.CurrencyCode
	prompts         bool
	position        int
}

// InteractiveOptions wires the state shown to the user between prompts.
type InteractiveOptions struct {
	Total           func() decimal.Decimal
	DefaultCurrency func() domain.CurrencyCode
	// Prompts toggles the question lines; they are noise when input is piped.
	Prompts bool
}

// NewInteractiveSource creates a prompt driven source reading from in.
func NewInteractiveSource(in io.Reader, console *Console, dates ports.DateParser, opts InteractiveOptions) *InteractiveSource {
	return &InteractiveSource{
		scanner:         bufio.NewScanner(in),
		console:         console,
		dates:           dates,
		total:           opts.Total,
		defaultCurrency: opts.DefaultCurrency,
		prompts:         opts.Prompts,
	}
}

// Next implements ports.EntrySource.
func (s *InteractiveSource) Next(ctx context.Context) (domain.RawEntry, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.RawEntry{}, err
		}

		s.console.RunningTotal(s.total())
		s.prompt("Enter the next income date or x to finish")
		dateText, err := s.readLine()
		if err != nil {
			return domain.RawEntry{}, err
		}
		if isExit(dateText) {
			return domain.RawEntry{}, io.EOF
		}

		date, err := s.dates.ParseDate(dateText)
		if err != nil {
			s.console.Error("Unrecognised date format")
			continue
		}
		s.console.Printf("Income date: %s\n", date.Format(humanDateLayout))

		s.prompt("Enter the amount with its currency (default: " + s.defaultCurrency().String() + ") or x to correct the date")
		amountText, err := s.readLine()
		if err != nil {
			return domain.RawEntry{}, err
		}
		if isExit(amountText) {
			continue
		}

		s.position++
		return domain.RawEntry{
			Position:   s.position,
			DateText:   dateText,
			AmountText: amountText,
		}, nil
	}
}

// Recorded implements ports.EntryObserver.
func (s *InteractiveSource) Recorded(conv domain.Conversion) {
	s.console.Conversion(conv)
}

// Rejected implements ports.EntryObserver.
func (s *InteractiveSource) Rejected(_ domain.RawEntry, err error) {
	if errors.Is(err, apperrors.ErrUnparseableDate) {
		s.console.Error("Unrecognised date format")
		return
	}
	s.console.Error("%v", err)
}

func (s *InteractiveSource) prompt(msg string) {
	if s.prompts {
		s.console.Println(msg)
	}
}

// readLine returns the next trimmed line, io.EOF when the input is exhausted.
func (s *InteractiveSource) readLine() (string, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.scanner.Text()), nil
}

func isExit(s string) bool {
	return strings.EqualFold(s, exitToken)
}
