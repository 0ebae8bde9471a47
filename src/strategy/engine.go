package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"signalscanner/src/connectors"
	"signalscanner/src/model"
)

// MarketDataSource is the slice of the FMP client the engine consumes.
type MarketDataSource interface {
	GetEarningsCalendar(ctx context.Context, asOf time.Time) ([]string, error)
	GetPriceDataForDate(ctx context.Context, symbol string, asOf time.Time) (*connectors.PricePair, error)
	GetCloseOn(ctx context.Context, symbol string, asOf time.Time) (*decimal.Decimal, error)
}

// UniverseProvider supplies the eligible symbol set.
type UniverseProvider interface {
	GetUniverse(ctx context.Context, now time.Time, ttl time.Duration) ([]string, error)
}

type positionStore interface {
	OpenIfAbsent(ctx context.Context, symbol string, entryDate time.Time, entryPrice decimal.Decimal) (bool, error)
	ListOpen(ctx context.Context) ([]model.Position, error)
	Close(ctx context.Context, id string, exitDate time.Time, exitPrice decimal.Decimal, exitReason string) error
}

type alertStore interface {
	RecordIfAbsent(ctx context.Context, eventKey, alertType, symbol string, asOf time.Time, message string) (bool, error)
}

// DailyJobResult reports how many genuinely new alerts each phase produced.
// Re-running the job for the same date yields zero counts.
type DailyJobResult struct {
	NewEntryAlerts int
	NewExitAlerts  int
}

// Engine composes the universe cache, market data and the durable stores
// into the two-phase daily scan. Each phase is independently idempotent:
// position and alert writes are conflict-ignoring inserts keyed on storage
// constraints, so replaying a date is the designed recovery path.
type Engine struct {
	logger    *logrus.Entry
	universe  UniverseProvider
	market    MarketDataSource
	positions positionStore
	alerts    alertStore
	cacheTTL  time.Duration
	now       func() time.Time
}

func NewEngine(universe UniverseProvider, market MarketDataSource, positions positionStore, alerts alertStore) *Engine {
	return &Engine{
		logger:    logrus.WithField("component", "strategy.Engine"),
		universe:  universe,
		market:    market,
		positions: positions,
		alerts:    alerts,
		cacheTTL:  GetConfig().UniverseCacheTTL(),
		now:       time.Now,
	}
}

// ScanEntries evaluates every universe symbol reporting earnings on asOf
// and records a position plus an ENTRY alert for each fired signal.
// Returns the number of newly created alerts. One symbol's failure never
// aborts the batch.
func (e *Engine) ScanEntries(ctx context.Context, asOf time.Time) (int, error) {
	log := e.logger.WithFields(logrus.Fields{"phase": "entries", "as_of": asOf.Format(dateLayout)})
	log.Info("Scanning entries")

	universeSymbols, err := e.universe.GetUniverse(ctx, e.now(), e.cacheTTL)
	if err != nil {
		return 0, fmt.Errorf("load symbol universe: %w", err)
	}
	if len(universeSymbols) == 0 {
		log.Warn("No universe symbols available")
		return 0, nil
	}

	universe := make(map[string]struct{}, len(universeSymbols))
	for _, symbol := range universeSymbols {
		universe[symbol] = struct{}{}
	}

	earningsSymbols, err := e.market.GetEarningsCalendar(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("load earnings calendar: %w", err)
	}

	candidates := make([]string, 0, len(earningsSymbols))
	for _, symbol := range earningsSymbols {
		if _, ok := universe[symbol]; ok {
			candidates = append(candidates, symbol)
		}
	}
	log.WithFields(logrus.Fields{
		"earnings":   len(earningsSymbols),
		"candidates": len(candidates),
	}).Info("Earnings calendar filtered to universe")

	newAlerts := 0
	for _, symbol := range candidates {
		inserted, err := e.processEntryCandidate(ctx, symbol, asOf)
		if err != nil {
			log.WithField("symbol", symbol).WithError(err).Error("Entry candidate failed")
			continue
		}
		if inserted {
			newAlerts++
		}
	}

	log.WithField("new_alerts", newAlerts).Info("Entry scan complete")
	return newAlerts, nil
}

func (e *Engine) processEntryCandidate(ctx context.Context, symbol string, asOf time.Time) (bool, error) {
	pair, err := e.market.GetPriceDataForDate(ctx, symbol, asOf)
	if err != nil {
		return false, err
	}
	if pair == nil {
		e.logger.WithField("symbol", symbol).Debug("No price data, skipping")
		return false, nil
	}

	signal := EvaluateEntry(pair.AsOfClose, pair.PrevClose)
	if signal == nil {
		e.logger.WithField("symbol", symbol).Debug("Earnings return outside entry range")
		return false, nil
	}

	e.logger.WithFields(logrus.Fields{
		"symbol":          symbol,
		"earnings_return": signal.EarningsReturn.String(),
		"entry_price":     signal.EntryPrice.String(),
	}).Info("Entry signal fired")

	if _, err := e.positions.OpenIfAbsent(ctx, symbol, asOf, signal.EntryPrice); err != nil {
		return false, err
	}

	message := FormatEntryMessage(symbol, asOf, signal.EarningsReturn, signal.EntryPrice)
	return e.alerts.RecordIfAbsent(ctx, EntryEventKey(symbol, asOf), model.AlertTypeEntry, symbol, asOf, message)
}

// ScanExits evaluates every open position against the close on asOf and
// closes those that hit the stop-loss or the time exit, recording an EXIT
// alert each. Returns the number of newly created alerts.
func (e *Engine) ScanExits(ctx context.Context, asOf time.Time) (int, error) {
	log := e.logger.WithFields(logrus.Fields{"phase": "exits", "as_of": asOf.Format(dateLayout)})
	log.Info("Scanning exits")

	openPositions, err := e.positions.ListOpen(ctx)
	if err != nil {
		return 0, fmt.Errorf("list open positions: %w", err)
	}
	log.WithField("open_positions", len(openPositions)).Info("Open positions loaded")

	newAlerts := 0
	for i := range openPositions {
		position := openPositions[i]

		inserted, err := e.processExitCandidate(ctx, &position, asOf)
		if err != nil {
			log.WithField("symbol", position.Symbol).WithError(err).Error("Exit candidate failed")
			continue
		}
		if inserted {
			newAlerts++
		}
	}

	log.WithField("new_alerts", newAlerts).Info("Exit scan complete")
	return newAlerts, nil
}

func (e *Engine) processExitCandidate(ctx context.Context, position *model.Position, asOf time.Time) (bool, error) {
	closePrice, err := e.market.GetCloseOn(ctx, position.Symbol, asOf)
	if err != nil {
		return false, err
	}
	if closePrice == nil {
		e.logger.WithField("symbol", position.Symbol).Debug("No close price, skipping exit check")
		return false, nil
	}

	signal := EvaluateExit(position.EntryPrice, *closePrice, position.EntryDate, asOf)
	if signal == nil {
		return false, nil
	}

	e.logger.WithFields(logrus.Fields{
		"symbol":       position.Symbol,
		"exit_reason":  signal.Reason,
		"pnl":          signal.PnL.String(),
		"holding_days": signal.HoldingDays,
	}).Info("Exit signal fired")

	if err := e.positions.Close(ctx, position.ID, asOf, *closePrice, signal.Reason); err != nil {
		return false, err
	}

	eventKey := ExitEventKey(position.Symbol, position.EntryDate, asOf, signal.Reason)
	message := FormatExitMessage(position.Symbol, asOf, signal.Reason, signal.PnL, *closePrice, signal.HoldingDays)
	return e.alerts.RecordIfAbsent(ctx, eventKey, model.AlertTypeExit, position.Symbol, asOf, message)
}

// RunDailyJob runs the entry scan followed by the exit scan for the same
// date. The phases commit independently; a failing exit scan leaves the
// entry results in place, and the whole job can be re-run safely.
func (e *Engine) RunDailyJob(ctx context.Context, asOf time.Time) (DailyJobResult, error) {
	log := e.logger.WithField("as_of", asOf.Format(dateLayout))
	log.Info("Running daily job")

	newEntries, err := e.ScanEntries(ctx, asOf)
	if err != nil {
		return DailyJobResult{}, fmt.Errorf("entry scan: %w", err)
	}

	newExits, err := e.ScanExits(ctx, asOf)
	if err != nil {
		return DailyJobResult{NewEntryAlerts: newEntries}, fmt.Errorf("exit scan: %w", err)
	}

	result := DailyJobResult{NewEntryAlerts: newEntries, NewExitAlerts: newExits}
	log.WithFields(logrus.Fields{
		"new_entry_alerts": result.NewEntryAlerts,
		"new_exit_alerts":  result.NewExitAlerts,
	}).Info("Daily job complete")
	return result, nil
}
