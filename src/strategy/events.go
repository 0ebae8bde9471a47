package strategy

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var hundred = decimal.NewFromInt(100)

// EntryEventKey builds the deterministic dedup key for an entry alert.
// Identical (symbol, date) inputs always yield byte-identical keys.
func EntryEventKey(symbol string, entryDate time.Time) string {
	return fmt.Sprintf("ENTRY|%s|%s", symbol, entryDate.Format(dateLayout))
}

// ExitEventKey builds the deterministic dedup key for an exit alert. The
// entry date, exit date and reason are all part of the key so distinct exit
// events never collide.
func ExitEventKey(symbol string, entryDate, exitDate time.Time, exitReason string) string {
	return fmt.Sprintf("EXIT|%s|%s|%s|%s",
		symbol, entryDate.Format(dateLayout), exitDate.Format(dateLayout), exitReason)
}

// FormatEntryMessage renders the human-readable entry notification text.
func FormatEntryMessage(symbol string, asOf time.Time, earningsReturn, entryPrice decimal.Decimal) string {
	return fmt.Sprintf("[ENTRY] %s %s\nEarnings day return: %s%%\nEntry price (close): %s",
		symbol,
		asOf.Format(dateLayout),
		earningsReturn.Mul(hundred).StringFixed(2),
		entryPrice.StringFixed(2))
}

// FormatExitMessage renders the human-readable exit notification text.
func FormatExitMessage(symbol string, exitDate time.Time, exitReason string, pnl, exitPrice decimal.Decimal, holdingDays int) string {
	return fmt.Sprintf("[EXIT-%s] %s %s\nPnL: %s%%\nExit price (close): %s\nHolding days: %d",
		exitReason,
		symbol,
		exitDate.Format(dateLayout),
		pnl.Mul(hundred).StringFixed(2),
		exitPrice.StringFixed(2),
		holdingDays)
}
