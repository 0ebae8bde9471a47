package strategy

import (
	"time"

	"github.com/shopspring/decimal"

	"signalscanner/src/model"
)

// Strategy thresholds. All bounds are inclusive; comparisons run on exact
// decimals so boundary returns like exactly -5% behave deterministically.
var (
	EntryReturnMin    = decimal.RequireFromString("-0.30")
	EntryReturnMax    = decimal.RequireFromString("-0.05")
	StopLossThreshold = decimal.RequireFromString("-0.10")
)

// MaxHoldingDays is the time-exit horizon in calendar days.
const MaxHoldingDays = 50

var one = decimal.NewFromInt(1)

// EntrySignal is a fired entry decision.
type EntrySignal struct {
	EarningsReturn decimal.Decimal
	EntryPrice     decimal.Decimal
}

// EvaluateEntry decides whether the earnings-day return qualifies for an
// entry. Returns nil when no signal fires.
func EvaluateEntry(asOfClose, prevClose decimal.Decimal) *EntrySignal {
	if prevClose.IsZero() {
		return nil
	}

	earningsReturn := asOfClose.Div(prevClose).Sub(one)

	if earningsReturn.Cmp(EntryReturnMin) < 0 || earningsReturn.Cmp(EntryReturnMax) > 0 {
		return nil
	}

	return &EntrySignal{
		EarningsReturn: earningsReturn,
		EntryPrice:     asOfClose,
	}
}

// ExitSignal is a fired exit decision. Reason is one of the model exit
// reason constants.
type ExitSignal struct {
	Reason      string
	PnL         decimal.Decimal
	HoldingDays int
}

// EvaluateExit decides whether an open position should close on asOfDate.
// Stop-loss takes priority over the time exit when both conditions hold.
// Holding days count calendar days from the entry date.
func EvaluateExit(entryPrice, currentClose decimal.Decimal, entryDate, asOfDate time.Time) *ExitSignal {
	if entryPrice.IsZero() {
		return nil
	}

	pnl := currentClose.Div(entryPrice).Sub(one)
	holdingDays := calendarDays(entryDate, asOfDate)

	if pnl.Cmp(StopLossThreshold) <= 0 {
		return &ExitSignal{Reason: model.ExitReasonStopLoss, PnL: pnl, HoldingDays: holdingDays}
	}
	if holdingDays >= MaxHoldingDays {
		return &ExitSignal{Reason: model.ExitReasonTimeExit, PnL: pnl, HoldingDays: holdingDays}
	}

	return nil
}

func calendarDays(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay).Hours() / 24)
}
