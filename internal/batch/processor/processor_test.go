package processor

//go:generate mockgen -source=processor.go -destination=mocks/mocks.go -package=mocks PayableCreator,Notifier,Deduplicator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	assignorservice "aprovame/internal/assignor/service"
	assignorstore "aprovame/internal/assignor/store"
	"aprovame/internal/batch/dedup"
	batchmetrics "aprovame/internal/batch/metrics"
	"aprovame/internal/batch/models"
	"aprovame/internal/batch/processor/mocks"
	payablemodels "aprovame/internal/payable/models"
	payableservice "aprovame/internal/payable/service"
	payablestore "aprovame/internal/payable/store"
	id "aprovame/pkg/domain"
)

type ProcessorSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	payables *mocks.MockPayableCreator
	notifier *mocks.MockNotifier
	metrics  *batchmetrics.Metrics
	logger   *slog.Logger
	now      time.Time
	ctx      context.Context
}

func TestProcessorSuite(t *testing.T) {
	suite.Run(t, new(ProcessorSuite))
}

func (s *ProcessorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.payables = mocks.NewMockPayableCreator(s.ctrl)
	s.notifier = mocks.NewMockNotifier(s.ctrl)
	s.metrics = batchmetrics.New(prometheus.NewRegistry())
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s.ctx = context.Background()
}

func (s *ProcessorSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ProcessorSuite) newProcessor(opts ...Option) *Processor {
	base := []Option{
		WithLogger(s.logger),
		WithMetrics(s.metrics),
		WithClock(func() time.Time { return s.now }),
	}
	return New(s.payables, s.notifier, append(base, opts...)...)
}

func (s *ProcessorSuite) batch(values ...string) *models.Batch {
	items := make([]models.Item, len(values))
	for i, v := range values {
		items[i] = models.Item{
			Value:        decimal.RequireFromString(v),
			EmissionDate: s.now.AddDate(0, 0, -1),
			AssignorID:   id.NewAssignorID(),
		}
	}
	return models.NewBatch(items, s.now)
}

func (s *ProcessorSuite) TestAllItemsSucceed() {
	b := s.batch("10", "20", "30")
	s.payables.EXPECT().Import(gomock.Any(), gomock.Any()).Return(&payablemodels.Payable{}, nil).Times(3)
	s.notifier.EXPECT().NotifyBatchCompleted(gomock.Any(), gomock.Any(), "").Return(nil).Times(1)

	result := s.newProcessor().Process(s.ctx, b)
	s.Require().NotNil(result)
	s.Equal(3, result.SuccessCount)
	s.Zero(result.FailureCount)
	s.Empty(result.Errors)
	s.Equal(s.now, result.ProcessedAt)
	s.Equal(b.ID, result.BatchID)
}

func (s *ProcessorSuite) TestPartialFailureKeepsGoing() {
	b := s.batch("10", "0", "30", "40")
	b.Items[2].EmissionDate = s.now.Add(time.Hour)

	gomock.InOrder(
		s.payables.EXPECT().Import(gomock.Any(), gomock.Any()).Return(&payablemodels.Payable{}, nil),
		s.payables.EXPECT().Import(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset")),
	)
	var notified *models.Result
	s.notifier.EXPECT().NotifyBatchCompleted(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *models.Result, _ string) error {
			notified = r
			return nil
		})

	result := s.newProcessor().Process(s.ctx, b)
	s.Equal(1, result.SuccessCount)
	s.Equal(3, result.FailureCount)
	s.Equal([]string{
		"item 2: failed to create payable: the value must be greater than zero",
		"item 3: failed to create payable: the emission date cannot be in the future",
		"item 4: failed to create payable: connection reset",
	}, result.Errors)
	s.Same(result, notified)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.ItemsProcessed.WithLabelValues("success")))
	s.Equal(float64(3), testutil.ToFloat64(s.metrics.ItemsProcessed.WithLabelValues("failure")))
}

func (s *ProcessorSuite) TestNotifierErrorIsSwallowed() {
	b := s.batch("10")
	s.payables.EXPECT().Import(gomock.Any(), gomock.Any()).Return(&payablemodels.Payable{}, nil)
	s.notifier.EXPECT().NotifyBatchCompleted(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

	result := s.newProcessor().Process(s.ctx, b)
	s.Require().NotNil(result)
	s.Equal(1, result.SuccessCount)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.NotifyFailures))
}

func (s *ProcessorSuite) TestRecipientIsForwarded() {
	b := s.batch("10")
	s.payables.EXPECT().Import(gomock.Any(), gomock.Any()).Return(&payablemodels.Payable{}, nil)
	s.notifier.EXPECT().NotifyBatchCompleted(gomock.Any(), gomock.Any(), "ops@bankme.com").Return(nil)

	s.newProcessor(WithRecipient("ops@bankme.com")).Process(s.ctx, b)
}

func (s *ProcessorSuite) TestExpiredBudgetFailsRemainingItems() {
	b := s.batch("10", "20")
	s.notifier.EXPECT().NotifyBatchCompleted(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	result := s.newProcessor(WithBudget(0, 0)).Process(s.ctx, b)
	s.Zero(result.SuccessCount)
	s.Equal(2, result.FailureCount)
	s.Equal("item 1: failed to create payable: processing budget exceeded", result.Errors[0])
	s.Equal(result.TotalPayables, result.SuccessCount+result.FailureCount)
}

func (s *ProcessorSuite) TestProcessedBatchIsSkipped() {
	guard := mocks.NewMockDeduplicator(s.ctrl)
	b := s.batch("10")
	guard.EXPECT().Processed(gomock.Any(), b.ID).Return(true, nil)

	result := s.newProcessor(WithDeduplicator(guard)).Process(s.ctx, b)
	s.Nil(result)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.DuplicatesSkipped))
}

func (s *ProcessorSuite) TestBatchMarkedAfterReport() {
	guard := mocks.NewMockDeduplicator(s.ctrl)
	b := s.batch("10")
	gomock.InOrder(
		guard.EXPECT().Processed(gomock.Any(), b.ID).Return(false, nil),
		s.payables.EXPECT().Import(gomock.Any(), gomock.Any()).Return(&payablemodels.Payable{}, nil),
		s.notifier.EXPECT().NotifyBatchCompleted(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
		guard.EXPECT().MarkProcessed(gomock.Any(), b.ID).Return(nil),
	)

	s.Require().NotNil(s.newProcessor(WithDeduplicator(guard)).Process(s.ctx, b))
}

func (s *ProcessorSuite) TestDedupErrorFallsBackToProcessing() {
	guard := mocks.NewMockDeduplicator(s.ctrl)
	b := s.batch("10")
	guard.EXPECT().Processed(gomock.Any(), b.ID).Return(false, errors.New("redis unavailable"))
	guard.EXPECT().MarkProcessed(gomock.Any(), b.ID).Return(errors.New("redis unavailable"))
	s.payables.EXPECT().Import(gomock.Any(), gomock.Any()).Return(&payablemodels.Payable{}, nil)
	s.notifier.EXPECT().NotifyBatchCompleted(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	result := s.newProcessor(WithDeduplicator(guard)).Process(s.ctx, b)
	s.Require().NotNil(result)
	s.Equal(1, result.SuccessCount)
}

// TestRedeliveryAfterInterruptedPass stops the first delivery mid-batch the
// way a killed worker would. The redelivery must run in full and report.
func (s *ProcessorSuite) TestRedeliveryAfterInterruptedPass() {
	guard := dedup.NewInMemory(time.Hour)
	b := s.batch("10", "20")
	p := s.newProcessor(WithDeduplicator(guard))

	s.payables.EXPECT().Import(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, payableservice.CreateCommand) (*payablemodels.Payable, error) {
			panic("worker killed")
		})
	s.Panics(func() { p.Process(s.ctx, b) })

	s.payables.EXPECT().Import(gomock.Any(), gomock.Any()).Return(&payablemodels.Payable{}, nil).Times(2)
	s.notifier.EXPECT().NotifyBatchCompleted(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1)

	result := p.Process(s.ctx, b)
	s.Require().NotNil(result)
	s.Equal(2, result.SuccessCount)

	s.Nil(p.Process(s.ctx, b), "a completed batch is not processed again")
}

// TestAgainstPayableService runs the real creation path. An assignor deleted
// after intake still owns its items; only an id with no row fails.
func (s *ProcessorSuite) TestAgainstPayableService() {
	ctx := context.Background()
	rows := assignorstore.NewInMemory()
	assignors := assignorservice.New(rows)
	live, err := assignors.Create(ctx, assignorservice.CreateCommand{
		Document: "12345678909", Email: "live@bankme.com", Phone: "1", Name: "Live",
	})
	s.Require().NoError(err)
	gone, err := assignors.Create(ctx, assignorservice.CreateCommand{
		Document: "11222333000181", Email: "gone@bankme.com", Phone: "1", Name: "Gone",
	})
	s.Require().NoError(err)
	s.Require().NoError(assignors.Delete(ctx, gone.ID))

	store := payablestore.NewInMemory(payablestore.WithAssignorRows(rows))
	payables := payableservice.New(store, assignors)
	s.notifier.EXPECT().NotifyBatchCompleted(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	emitted := s.now.AddDate(0, 0, -1)
	b := models.NewBatch([]models.Item{
		{Value: decimal.NewFromInt(100), EmissionDate: emitted, AssignorID: live.ID},
		{Value: decimal.NewFromInt(200), EmissionDate: emitted, AssignorID: gone.ID},
		{Value: decimal.NewFromInt(300), EmissionDate: emitted, AssignorID: id.NewAssignorID()},
	}, s.now)

	p := New(payables, s.notifier, WithLogger(s.logger), WithClock(func() time.Time { return s.now }))
	result := p.Process(ctx, b)
	s.Equal(2, result.SuccessCount)
	s.Equal([]string{"item 3: failed to create payable: assignor not found"}, result.Errors)
	s.Equal(2, store.Count())
}
