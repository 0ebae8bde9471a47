package strategy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"signalscanner/src/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func TestEvaluateEntryBoundaries(t *testing.T) {
	// prevClose fixed at 100 so the asOf close maps directly onto the
	// earnings-day return. Both entry bounds are inclusive.
	tests := []struct {
		name       string
		asOfClose  string
		wantSignal bool
		wantReturn string
	}{
		{name: "return -30% fires (lower bound)", asOfClose: "70", wantSignal: true, wantReturn: "-0.3"},
		{name: "return -31% does not fire", asOfClose: "69", wantSignal: false},
		{name: "return -5% fires (upper bound)", asOfClose: "95", wantSignal: true, wantReturn: "-0.05"},
		{name: "return -4% does not fire", asOfClose: "96", wantSignal: false},
		{name: "return -12% fires", asOfClose: "88", wantSignal: true, wantReturn: "-0.12"},
		{name: "flat day does not fire", asOfClose: "100", wantSignal: false},
		{name: "positive day does not fire", asOfClose: "112", wantSignal: false},
	}

	prevClose := d("100")
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			signal := EvaluateEntry(d(tc.asOfClose), prevClose)

			if !tc.wantSignal {
				if signal != nil {
					t.Fatalf("expected no signal, got %+v", signal)
				}
				return
			}
			if signal == nil {
				t.Fatal("expected signal, got none")
			}
			if !signal.EarningsReturn.Equal(d(tc.wantReturn)) {
				t.Fatalf("expected return %s, got %s", tc.wantReturn, signal.EarningsReturn)
			}
			if !signal.EntryPrice.Equal(d(tc.asOfClose)) {
				t.Fatalf("expected entry price %s, got %s", tc.asOfClose, signal.EntryPrice)
			}
		})
	}
}

func TestEvaluateEntryZeroPrevClose(t *testing.T) {
	if signal := EvaluateEntry(d("88"), decimal.Zero); signal != nil {
		t.Fatalf("expected no signal on zero prev close, got %+v", signal)
	}
}

func TestEvaluateExitBoundaries(t *testing.T) {
	entryPrice := d("100")
	entryDate := day(2025, time.January, 1)

	tests := []struct {
		name         string
		currentClose string
		asOfDate     time.Time
		wantReason   string
		wantDays     int
	}{
		{
			name:         "pnl -10% fires stop loss (boundary)",
			currentClose: "90",
			asOfDate:     day(2025, time.January, 11),
			wantReason:   model.ExitReasonStopLoss,
			wantDays:     10,
		},
		{
			name:         "pnl -9% at 10 days holds",
			currentClose: "91",
			asOfDate:     day(2025, time.January, 11),
		},
		{
			name:         "pnl -11% fires stop loss",
			currentClose: "89",
			asOfDate:     day(2025, time.January, 11),
			wantReason:   model.ExitReasonStopLoss,
			wantDays:     10,
		},
		{
			name:         "50 calendar days fires time exit (boundary)",
			currentClose: "100",
			asOfDate:     day(2025, time.February, 20),
			wantReason:   model.ExitReasonTimeExit,
			wantDays:     50,
		},
		{
			name:         "49 calendar days holds",
			currentClose: "100",
			asOfDate:     day(2025, time.February, 19),
		},
		{
			name:         "stop loss takes priority over time exit",
			currentClose: "85",
			asOfDate:     day(2025, time.March, 2),
			wantReason:   model.ExitReasonStopLoss,
			wantDays:     60,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			signal := EvaluateExit(entryPrice, d(tc.currentClose), entryDate, tc.asOfDate)

			if tc.wantReason == "" {
				if signal != nil {
					t.Fatalf("expected no signal, got %+v", signal)
				}
				return
			}
			if signal == nil {
				t.Fatal("expected signal, got none")
			}
			if signal.Reason != tc.wantReason {
				t.Fatalf("expected reason %s, got %s", tc.wantReason, signal.Reason)
			}
			if signal.HoldingDays != tc.wantDays {
				t.Fatalf("expected %d holding days, got %d", tc.wantDays, signal.HoldingDays)
			}
		})
	}
}

func TestEventKeysAreDeterministic(t *testing.T) {
	entryDate := day(2025, time.January, 1)
	exitDate := day(2025, time.February, 20)

	key := EntryEventKey("AAPL", entryDate)
	if key != "ENTRY|AAPL|2025-01-01" {
		t.Fatalf("unexpected entry key: %s", key)
	}
	if again := EntryEventKey("AAPL", entryDate); again != key {
		t.Fatalf("entry key not reproducible: %s vs %s", key, again)
	}

	exitKey := ExitEventKey("AAPL", entryDate, exitDate, model.ExitReasonTimeExit)
	if exitKey != "EXIT|AAPL|2025-01-01|2025-02-20|TIME_EXIT" {
		t.Fatalf("unexpected exit key: %s", exitKey)
	}

	// Changing any single field must change the key.
	variants := []string{
		ExitEventKey("MSFT", entryDate, exitDate, model.ExitReasonTimeExit),
		ExitEventKey("AAPL", day(2025, time.January, 2), exitDate, model.ExitReasonTimeExit),
		ExitEventKey("AAPL", entryDate, day(2025, time.February, 21), model.ExitReasonTimeExit),
		ExitEventKey("AAPL", entryDate, exitDate, model.ExitReasonStopLoss),
	}
	for i, variant := range variants {
		if variant == exitKey {
			t.Fatalf("variant %d collided with base key %s", i, exitKey)
		}
	}
}

func TestFormatEntryMessage(t *testing.T) {
	message := FormatEntryMessage("AAPL", day(2025, time.March, 10), d("-0.12"), d("88"))

	want := "[ENTRY] AAPL 2025-03-10\nEarnings day return: -12.00%\nEntry price (close): 88.00"
	if message != want {
		t.Fatalf("unexpected entry message:\n%s", message)
	}
}

func TestFormatExitMessage(t *testing.T) {
	message := FormatExitMessage("AAPL", day(2025, time.February, 20), model.ExitReasonStopLoss, d("-0.11"), d("89"), 10)

	want := "[EXIT-STOP_LOSS] AAPL 2025-02-20\nPnL: -11.00%\nExit price (close): 89.00\nHolding days: 10"
	if message != want {
		t.Fatalf("unexpected exit message:\n%s", message)
	}
}
