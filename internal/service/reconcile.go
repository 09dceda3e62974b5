package service

import (
	"restopos/internal/config"
	"restopos/internal/dto"

	"github.com/shopspring/decimal"
)

// Closure classification.
const (
	ClassNormal  = "normal"
	ClassWarning = "warning"
	ClassAlert   = "alert"
)

// Thresholds are the deviation boundaries as percent of expected cash.
// |pct| <= Warn → normal, <= Alert → warning, > Alert → alert.
// They are business configuration, never hardcoded in the arithmetic.
type Thresholds struct {
	Warn  decimal.Decimal
	Alert decimal.Decimal
}

func ThresholdsFromConfig(cfg *config.Config) Thresholds {
	return Thresholds{
		Warn:  decimal.NewFromFloat(cfg.CashWarnPct),
		Alert: decimal.NewFromFloat(cfg.CashAlertPct),
	}
}

// Reconcile compares the counted amount against expected cash
// (opening float + net cash ledger entries).
//
// When expected cash is zero the percentage is reported as 0 instead of
// dividing: a zero-expected closure with any counted difference is classified
// straight as alert, and as normal only when the difference is also zero.
func Reconcile(opening, counted, netCash decimal.Decimal, th Thresholds) dto.ReconciliationResponse {
	expected := opening.Add(netCash)
	difference := counted.Sub(expected)

	var pct decimal.Decimal
	classification := ClassAlert
	if expected.IsZero() {
		if difference.IsZero() {
			classification = ClassNormal
		}
	} else {
		pct = difference.Div(expected).Mul(decimal.NewFromInt(100)).Round(2)
		classification = classify(pct, th)
	}

	return dto.ReconciliationResponse{
		ExpectedCash:      expected,
		CountedAmount:     counted,
		Difference:        difference,
		DifferencePercent: pct,
		Classification:    classification,
	}
}

func classify(pct decimal.Decimal, th Thresholds) string {
	abs := pct.Abs()
	switch {
	case abs.LessThanOrEqual(th.Warn):
		return ClassNormal
	case abs.LessThanOrEqual(th.Alert):
		return ClassWarning
	default:
		return ClassAlert
	}
}
