package dateparse

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/income_converter/internal/apperrors"
	"github.com/SscSPs/income_converter/internal/core/domain"
	dps "github.com/markusmobius/go-dateparser"
)

// numericLayouts are tried before the natural language parser. Day-first order.
var numericLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"2.1.2006",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"2006.01.02",
	"2006/01/02",
	"2.1.06",
	"2/1/06",
}

// numericChars are the only characters of a date written in a numeric layout.
const numericChars = "0123456789./-"

// Parser understands dates such as "12.03.2021", "2021-03-12", "12 March 2021"
// or "12 marca 2021". It implements ports.DateParser.
type Parser struct {
	cfg *dps.Configuration
}

// NewParser creates a day-first date parser.
func NewParser() *Parser {
	return &Parser{
		cfg: &dps.Configuration{
			DateOrder: dps.DMY,
		},
	}
}

// ParseDate returns the calendar day (midnight UTC) described by text.
func (p *Parser) ParseDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, fmt.Errorf("%w: empty date", apperrors.ErrUnparseableDate)
	}

	for _, layout := range numericLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return domain.Day(t), nil
		}
	}
	if strings.Trim(text, numericChars) == "" {
		// Numeric but no layout accepts it, e.g. "31.02.2021". The natural
		// language parser would clamp the day instead of failing.
		return time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrUnparseableDate, text)
	}

	dt, err := dps.Parse(p.cfg, text)
	if err != nil || dt.Time.IsZero() {
		return time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrUnparseableDate, text)
	}
	return domain.Day(dt.Time), nil
}
