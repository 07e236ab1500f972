package handlers

import (
	"fmt"
	"io"

	"github.com/SscSPs/income_converter/internal/core/domain"
	"github.com/SscSPs/income_converter/internal/utils"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
)

// humanDateLayout is used when echoing dates back to the user.
const humanDateLayout = "2 January 2006"

// Console writes the user facing messages of the converter.
type Console struct {
	out           io.Writer
	localCurrency string
	errColor      *color.Color
	okColor       *color.Color
	headColor     *color.Color
}

// NewConsole creates a Console writing to out. Colours are dropped automatically
// when out is not a terminal (see color.NoColor).
func NewConsole(out io.Writer, localCurrency string) *Console {
	return &Console{
		out:           out,
		localCurrency: localCurrency,
		errColor:      color.New(color.FgRed),
		okColor:       color.New(color.FgGreen),
		headColor:     color.New(color.Bold),
	}
}

// Money formats a local currency amount.
func (c *Console) Money(amount decimal.Decimal) string {
	return utils.FormatLocal(amount, c.localCurrency)
}

// Println writes a plain line.
func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

// Printf writes a plain formatted message.
func (c *Console) Printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

// Error writes an error line.
func (c *Console) Error(format string, a ...any) {
	c.errColor.Fprintf(c.out, format+"\n", a...) //nolint:errcheck
}

// RunningTotal writes the total shown before every date prompt.
func (c *Console) RunningTotal(total decimal.Decimal) {
	c.Printf("Total income: %s.\n", c.Money(total))
}

// Conversion echoes a recorded income.
func (c *Console) Conversion(conv domain.Conversion) {
	d := conv.EffectiveDate
	c.okColor.Fprintf(c.out, "Adding %s %s at the rate of %s from %d.%d.%d (last business day before)\n", //nolint:errcheck
		conv.Entry.Amount.String(), conv.Entry.Currency, conv.Rate.String(), d.Day(), int(d.Month()), d.Year())
}

// Report writes the final summary.
func (c *Console) Report(report domain.Report) {
	c.headColor.Fprintf(c.out, "Total income: %s, including:\n", c.Money(report.GrandTotal)) //nolint:errcheck
	for _, line := range report.Breakdown {
		c.Printf("%s in %s\n", c.Money(line.Amount), line.Currency)
	}
}
