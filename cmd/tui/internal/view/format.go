package view

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const opTimeout = 5 * time.Second

var printer = message.NewPrinter(language.AmericanEnglish)

// Currency renders a monetary amount with grouping, e.g. $4,850,000.00.
func Currency(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("$%.2f", f)
}

// Percent renders a completion percentage.
func Percent(d decimal.Decimal) string {
	return d.Round(1).String() + "%"
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// OpCtx returns a context with a standard timeout for store operations.
func OpCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}
