package jobs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/odyssey-erp/costbook/internal/alerts"
	"github.com/odyssey-erp/costbook/internal/inventory"
	jobmetrics "github.com/odyssey-erp/costbook/internal/jobs"
	"github.com/odyssey-erp/costbook/internal/platform/blob"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type stubValuator struct {
	vals []inventory.Valuation
	err  error
}

func (s stubValuator) Valuations(context.Context, inventory.PriceSource) ([]inventory.Valuation, error) {
	return s.vals, s.err
}

type fixedPrices struct{}

func (fixedPrices) UnitPrice(context.Context, inventory.Item) (decimal.Decimal, error) {
	return decimal.NewFromInt(2), nil
}

func TestRevaluationWritesReport(t *testing.T) {
	store, err := blob.NewFilesystem(t.TempDir())
	require.NoError(t, err)
	vals := []inventory.Valuation{
		{ItemID: "flour", Name: "Flour", Unit: "kg", Quantity: decimal.NewFromInt(30), UnitPrice: decimal.NewFromInt(2), Value: decimal.NewFromInt(60), Status: inventory.StatusInStock, PercentageOfCapacity: decimal.NewFromInt(30)},
		{ItemID: "sugar", Name: "Sugar", Unit: "kg", Quantity: decimal.NewFromInt(5), UnitPrice: decimal.RequireFromString("1.5"), Value: decimal.RequireFromString("7.5"), Status: inventory.StatusLowStock},
	}
	job := NewRevaluationJob(stubValuator{vals: vals}, fixedPrices{}, store, discard, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	asOf := time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)

	task, err := NewInventoryRevaluationTask(asOf)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	rc, info, err := store.Get(context.Background(), "valuations/2024-03-01.xlsx")
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	require.Equal(t, blob.ContentTypeXLSX, info.ContentType)

	f, err := excelize.OpenReader(rc)
	require.NoError(t, err)
	rows, err := f.GetRows(valuationSheet)
	require.NoError(t, err)
	require.Equal(t, "Item ID", rows[0][0])
	require.Equal(t, "flour", rows[1][0])
	require.Equal(t, "sugar", rows[2][0])
	require.Equal(t, "Total", rows[3][0])
	require.Equal(t, "67.5", rows[3][5])
}

func TestRevaluationPropagatesValuationError(t *testing.T) {
	store, err := blob.NewFilesystem(t.TempDir())
	require.NoError(t, err)
	job := NewRevaluationJob(stubValuator{err: errors.New("db down")}, fixedPrices{}, store, discard, nil)

	_, _, err = job.Run(context.Background(), time.Now())
	require.ErrorContains(t, err, "db down")

	list, err := store.List(context.Background(), "valuations/")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestRevaluationRejectsBadPayload(t *testing.T) {
	store, err := blob.NewFilesystem(t.TempDir())
	require.NoError(t, err)
	job := NewRevaluationJob(stubValuator{}, fixedPrices{}, store, discard, nil)
	err = job.Handle(context.Background(), asynq.NewTask(TaskInventoryRevaluation, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

type stubScanner struct {
	raised []alerts.Alert
	calls  int
}

func (s *stubScanner) RunScan(context.Context) ([]alerts.Alert, error) {
	s.calls++
	return s.raised, nil
}

func TestAlertScanJob(t *testing.T) {
	scanner := &stubScanner{raised: []alerts.Alert{{Kind: alerts.KindLowStock}, {Kind: alerts.KindPriceDrift}}}
	job := NewAlertScanJob(scanner, discard, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewAlertScanTask("cron")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, 1, scanner.calls)

	var unset *AlertScanJob
	require.Error(t, unset.Handle(context.Background(), task))
}

func TestValuationReportKey(t *testing.T) {
	at := time.Date(2024, 12, 31, 23, 30, 0, 0, time.FixedZone("X", -3*3600))
	require.Equal(t, "valuations/2025-01-01.xlsx", ValuationReportKey(at))
}

func TestTaskLoggingPassesErrorThrough(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	boom := errors.New("boom")
	h := taskLogging(logger)(asynq.HandlerFunc(func(context.Context, *asynq.Task) error { return boom }))

	err := h.ProcessTask(context.Background(), asynq.NewTask(TaskAlertScan, nil))
	require.ErrorIs(t, err, boom)
	require.Contains(t, buf.String(), "task=alerts:scan")
}
