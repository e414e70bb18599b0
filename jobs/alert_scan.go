package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/costbook/internal/alerts"
	jobmetrics "github.com/odyssey-erp/costbook/internal/jobs"
)

// AlertScanner runs a full alert scan.
type AlertScanner interface {
	RunScan(ctx context.Context) ([]alerts.Alert, error)
}

// AlertScanJob raises stock and price-drift alerts on a schedule.
type AlertScanJob struct {
	Scanner AlertScanner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewAlertScanJob initialises the alert scan handler.
func NewAlertScanJob(scanner AlertScanner, logger *slog.Logger, metrics *jobmetrics.Metrics) *AlertScanJob {
	return &AlertScanJob{Scanner: scanner, Logger: logger, Metrics: metrics}
}

// Handle executes one scan.
func (j *AlertScanJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Scanner == nil {
		return errors.New("alert scan: handler not configured")
	}
	var payload AlertScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	tracker := j.Metrics.Track(TaskAlertScan)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := loggerOrDefault(j.Logger).With(slog.String("task", TaskAlertScan), slog.String("reason", payload.Reason))
	start := time.Now()
	raised, err := j.Scanner.RunScan(ctx)
	if err != nil {
		logger.Error("alert scan failed", slog.Any("error", err))
		return err
	}
	counts := map[alerts.Kind]int{}
	for _, a := range raised {
		counts[a.Kind]++
	}
	for kind, n := range counts {
		j.Metrics.AddAlerts(string(kind), n)
	}
	logger.Info("completed alert scan",
		slog.Int("raised", len(raised)),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
