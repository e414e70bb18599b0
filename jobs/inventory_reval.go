package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/odyssey-erp/costbook/internal/inventory"
	jobmetrics "github.com/odyssey-erp/costbook/internal/jobs"
	"github.com/odyssey-erp/costbook/internal/platform/blob"
)

const valuationSheet = "Valuation"

// Valuator values active stock items.
type Valuator interface {
	Valuations(ctx context.Context, prices inventory.PriceSource) ([]inventory.Valuation, error)
}

// RevaluationJob values every active item and stores an XLSX report.
type RevaluationJob struct {
	Valuator Valuator
	Prices   inventory.PriceSource
	Blobs    blob.Store
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewRevaluationJob initialises the revaluation handler.
func NewRevaluationJob(valuator Valuator, prices inventory.PriceSource, blobs blob.Store, logger *slog.Logger, metrics *jobmetrics.Metrics) *RevaluationJob {
	return &RevaluationJob{
		Valuator: valuator,
		Prices:   prices,
		Blobs:    blobs,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes one revaluation.
func (j *RevaluationJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Valuator == nil || j.Prices == nil || j.Blobs == nil {
		return errors.New("inventory revaluation: handler not configured")
	}
	var payload InventoryRevaluationPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	asOf := payload.ScheduledFor.UTC()
	if payload.ScheduledFor.IsZero() {
		asOf = j.clock()
	}

	tracker := j.Metrics.Track(TaskInventoryRevaluation)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()
	logger := loggerOrDefault(j.Logger).With(slog.String("task", TaskInventoryRevaluation), slog.Time("as_of", asOf))

	info, total, err := j.Run(ctx, asOf)
	if err != nil {
		logger.Error("inventory revaluation failed", slog.Any("error", err))
		return err
	}
	logger.Info("completed inventory revaluation",
		slog.String("report", info.Key),
		slog.Int64("size_bytes", info.Size),
		slog.String("total_value", total.String()),
	)
	return nil
}

// Run values stock and writes the report. It returns the stored blob and
// the total stock value.
func (j *RevaluationJob) Run(ctx context.Context, asOf time.Time) (blob.Info, decimal.Decimal, error) {
	vals, err := j.Valuator.Valuations(ctx, j.Prices)
	if err != nil {
		return blob.Info{}, decimal.Zero, fmt.Errorf("inventory revaluation: value stock: %w", err)
	}
	buf, total, err := RenderValuationReport(vals, asOf)
	if err != nil {
		return blob.Info{}, decimal.Zero, err
	}
	info, err := j.Blobs.Put(ctx, ValuationReportKey(asOf), buf, blob.ContentTypeXLSX)
	if err != nil {
		return blob.Info{}, decimal.Zero, fmt.Errorf("inventory revaluation: store report: %w", err)
	}
	j.Metrics.SetStockValue(total.InexactFloat64())
	return info, total, nil
}

// ValuationReportKey is the blob key for the report of a given day.
func ValuationReportKey(asOf time.Time) string {
	return "valuations/" + asOf.UTC().Format("2006-01-02") + ".xlsx"
}

// RenderValuationReport writes one row per valuation plus a total row.
func RenderValuationReport(vals []inventory.Valuation, asOf time.Time) (*bytes.Buffer, decimal.Decimal, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", valuationSheet); err != nil {
		return nil, decimal.Zero, err
	}

	headers := []any{"Item ID", "Name", "Unit", "Quantity", "Unit Price", "Value", "Status", "% of Capacity"}
	if err := f.SetSheetRow(valuationSheet, "A1", &headers); err != nil {
		return nil, decimal.Zero, err
	}
	total := decimal.Zero
	row := 2
	for _, v := range vals {
		cells := []any{
			v.ItemID,
			v.Name,
			string(v.Unit),
			v.Quantity.InexactFloat64(),
			v.UnitPrice.InexactFloat64(),
			v.Value.InexactFloat64(),
			string(v.Status),
			v.PercentageOfCapacity.InexactFloat64(),
		}
		if err := f.SetSheetRow(valuationSheet, fmt.Sprintf("A%d", row), &cells); err != nil {
			return nil, decimal.Zero, err
		}
		total = total.Add(v.Value)
		row++
	}
	footer := []any{"Total", "", "", "", "", total.InexactFloat64(), "", ""}
	if err := f.SetSheetRow(valuationSheet, fmt.Sprintf("A%d", row), &footer); err != nil {
		return nil, decimal.Zero, err
	}
	if err := f.SetCellValue(valuationSheet, fmt.Sprintf("A%d", row+2), "As of "+asOf.UTC().Format(time.RFC3339)); err != nil {
		return nil, decimal.Zero, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("inventory revaluation: render xlsx: %w", err)
	}
	return buf, total, nil
}
