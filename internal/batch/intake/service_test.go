package intake

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks AssignorChecker,Publisher

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

	"aprovame/internal/batch/intake/mocks"
	batchmetrics "aprovame/internal/batch/metrics"
	"aprovame/internal/batch/models"
	id "aprovame/pkg/domain"
	dErrors "aprovame/pkg/domain-errors"
	"aprovame/pkg/requestcontext"
)

type IntakeSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	assignors *mocks.MockAssignorChecker
	publisher *mocks.MockPublisher
	metrics   *batchmetrics.Metrics
	svc       *Service
	ctx       context.Context
	now       time.Time
	known     id.AssignorID
}

func TestIntakeSuite(t *testing.T) {
	suite.Run(t, new(IntakeSuite))
}

func (s *IntakeSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.assignors = mocks.NewMockAssignorChecker(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)
	s.metrics = batchmetrics.New(prometheus.NewRegistry())
	s.svc = New(s.assignors, s.publisher,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
	)
	s.now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.known = id.NewAssignorID()
}

func (s *IntakeSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *IntakeSuite) item(value string) models.Item {
	return models.Item{
		Value:        decimal.RequireFromString(value),
		EmissionDate: s.now.AddDate(0, 0, -1),
		AssignorID:   s.known,
	}
}

func (s *IntakeSuite) items(n int) []models.Item {
	out := make([]models.Item, n)
	for i := range out {
		out[i] = s.item("10.00")
	}
	return out
}

func (s *IntakeSuite) expectKnownAssignor() {
	s.assignors.EXPECT().
		ExistingIDs(gomock.Any(), []id.AssignorID{s.known}).
		Return(map[id.AssignorID]struct{}{s.known: {}}, nil)
}

func (s *IntakeSuite) TestAcceptsAndPublishes() {
	s.expectKnownAssignor()
	var published *models.Batch
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, b *models.Batch) error {
			published = b
			return nil
		})

	receipt, err := s.svc.Submit(s.ctx, s.items(3))
	s.Require().NoError(err)
	s.Equal(models.StatusQueued, receipt.Status)
	s.Equal(3, receipt.TotalPayables)
	s.Equal(QueuedMessage, receipt.Message)
	s.Require().NotNil(published)
	s.Equal(receipt.BatchID, published.ID)
	s.Equal(s.now, published.CreatedAt)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.BatchesAccepted))
}

func (s *IntakeSuite) TestBatchIDsAreUnique() {
	s.assignors.EXPECT().ExistingIDs(gomock.Any(), gomock.Any()).
		Return(map[id.AssignorID]struct{}{s.known: {}}, nil).Times(2)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	first, err := s.svc.Submit(s.ctx, s.items(1))
	s.Require().NoError(err)
	second, err := s.svc.Submit(s.ctx, s.items(1))
	s.Require().NoError(err)
	s.NotEqual(first.BatchID, second.BatchID)
}

func (s *IntakeSuite) TestSizeBounds() {
	_, err := s.svc.Submit(s.ctx, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal("batch must contain at least one payable", dErrors.Message(err))

	_, err = s.svc.Submit(s.ctx, s.items(10_001))
	s.Equal("batch must contain at most 10000 payables", dErrors.Message(err))
	s.Equal(float64(2), testutil.ToFloat64(s.metrics.BatchesRejected.WithLabelValues(batchmetrics.ReasonSize)))
}

func (s *IntakeSuite) TestAcceptsExactlyMaxItems() {
	s.expectKnownAssignor()
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	receipt, err := s.svc.Submit(s.ctx, s.items(10_000))
	s.Require().NoError(err)
	s.Equal(10_000, receipt.TotalPayables)
}

func (s *IntakeSuite) TestRejectsNonPositiveValueWithoutEnqueue() {
	items := s.items(3)
	items[1] = s.item("0")

	_, err := s.svc.Submit(s.ctx, items)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal("item 2: the value must be greater than zero", dErrors.Message(err))
}

func (s *IntakeSuite) TestRejectsFutureEmissionDate() {
	items := s.items(2)
	items[1].EmissionDate = s.now.Add(time.Hour)

	_, err := s.svc.Submit(s.ctx, items)
	s.Equal("item 2: the emission date cannot be in the future", dErrors.Message(err))
}

func (s *IntakeSuite) TestValueCheckedBeforeDate() {
	items := s.items(2)
	items[0].EmissionDate = s.now.Add(time.Hour)
	items[1] = s.item("-5")

	_, err := s.svc.Submit(s.ctx, items)
	s.Equal("item 2: the value must be greater than zero", dErrors.Message(err))
}

func (s *IntakeSuite) TestRejectsUnknownAssignor() {
	unknown := id.NewAssignorID()
	items := s.items(2)
	items[1].AssignorID = unknown
	s.assignors.EXPECT().
		ExistingIDs(gomock.Any(), []id.AssignorID{s.known, unknown}).
		Return(map[id.AssignorID]struct{}{s.known: {}}, nil)

	_, err := s.svc.Submit(s.ctx, items)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Contains(dErrors.Message(err), unknown.String())
}

func (s *IntakeSuite) TestStoreFailureIsInternal() {
	s.assignors.EXPECT().ExistingIDs(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

	_, err := s.svc.Submit(s.ctx, s.items(1))
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *IntakeSuite) TestPublishFailureIsInternal() {
	s.expectKnownAssignor()
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("queue full"))

	_, err := s.svc.Submit(s.ctx, s.items(1))
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.BatchesRejected.WithLabelValues(batchmetrics.ReasonPublish)))
}
