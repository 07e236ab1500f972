package ports

import (
	"context"
	"time"

	"github.com/SscSPs/income_converter/internal/core/domain"
)

// DateParser understands free-text dates. It returns apperrors.ErrUnparseableDate
// for input it cannot resolve.
type DateParser interface {
	ParseDate(text string) (time.Time, error)
}

// EntrySource yields raw income records. Next returns io.EOF once the source is drained.
type EntrySource interface {
	Next(ctx context.Context) (domain.RawEntry, error)
}

// EntryObserver is notified about the outcome of every processed record.
// Sources that talk to a user implement it to echo results back.
type EntryObserver interface {
	Recorded(conv domain.Conversion)
	Rejected(raw domain.RawEntry, err error)
}
