package worker

// consolidation_cron.go
// Nightly job that renders the previous day's consolidation report as a PDF
// and emails it to the treasury address. The schedule is configurable; the
// default fires at 02:00 so every transfer of the previous day is settled.

import (
	"context"
	"fmt"
	"time"

	"restopos/internal/config"
	"restopos/internal/infra"
	"restopos/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// StartConsolidationCron schedules the nightly consolidation report and
// returns the running scheduler so the caller can Stop it on shutdown.
func StartConsolidationCron(cfg *config.Config, treasury service.TreasuryService, mailer *infra.Mailer) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(cfg.ConsolidationCron, func() {
		runConsolidation(cfg, treasury, mailer)
	})
	if err != nil {
		return nil, fmt.Errorf("consolidation cron: bad schedule %q: %w", cfg.ConsolidationCron, err)
	}
	c.Start()
	log.Info().Str("schedule", cfg.ConsolidationCron).Msg("consolidation cron started")
	return c, nil
}

func runConsolidation(cfg *config.Config, treasury service.TreasuryService, mailer *infra.Mailer) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	day := time.Now().UTC().AddDate(0, 0, -1)
	report, err := treasury.DailyConsolidation(ctx, day)
	if err != nil {
		log.Error().Err(err).Msg("consolidation cron: aggregation failed")
		return
	}
	if report.TransferCount == 0 {
		log.Info().Str("date", report.Date).Msg("consolidation cron: no transfers, skipping report")
		return
	}

	path, err := infra.GenerateConsolidationPDF(report, cfg.ReportStoragePath)
	if err != nil {
		log.Error().Err(err).Msg("consolidation cron: pdf generation failed")
		return
	}

	if cfg.TreasuryEmail == "" {
		log.Warn().Str("path", path).Msg("consolidation cron: no treasury email configured, report kept on disk")
		return
	}

	subject := fmt.Sprintf("Daily cash consolidation — %s", report.Date)
	body := fmt.Sprintf(
		"Consolidation for %s:\n\n"+
			"Transfers:   %d (%d confirmed)\n"+
			"Expected:    $%s\nReceived:    $%s\nDifference:  $%s\n",
		report.Date, report.TransferCount, report.ConfirmedCount,
		report.TotalExpected.StringFixed(2), report.TotalReceived.StringFixed(2),
		report.TotalDifference.StringFixed(2),
	)
	if err := mailer.Send(cfg.TreasuryEmail, subject, body, path); err != nil {
		log.Error().Err(err).Msg("consolidation cron: email delivery failed")
		return
	}
	log.Info().Str("date", report.Date).Str("path", path).Msg("consolidation cron: report delivered")
}
