package services

import (
	"errors"
	"testing"
	"time"

	apierrors "budget-tracker/internal/errors"
	"budget-tracker/internal/logging"
	"budget-tracker/internal/models"
	"budget-tracker/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CircuitBreakerTestSuite struct {
	suite.Suite
	clock   time.Time
	breaker *CircuitBreaker
}

func TestCircuitBreakerSuite(t *testing.T) {
	suite.Run(t, new(CircuitBreakerTestSuite))
}

func (s *CircuitBreakerTestSuite) SetupTest() {
	s.clock = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	s.breaker = NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:     3,
		ResetTimeout:    time.Minute,
		HalfOpenMaxSucc: 2,
	})
	s.breaker.now = func() time.Time { return s.clock }
}

func (s *CircuitBreakerTestSuite) trip() {
	for i := 0; i < 3; i++ {
		s.breaker.RecordFailure()
	}
	s.Require().Equal(StateOpen, s.breaker.State())
}

func (s *CircuitBreakerTestSuite) TestOpensAfterMaxFailures() {
	s.False(s.breaker.RecordFailure())
	s.False(s.breaker.RecordFailure())
	s.True(s.breaker.RecordFailure())

	s.Equal(StateOpen, s.breaker.State())
	s.False(s.breaker.Allow())
}

func (s *CircuitBreakerTestSuite) TestSuccessResetsFailureCount() {
	s.breaker.RecordFailure()
	s.breaker.RecordFailure()
	s.breaker.RecordSuccess()
	s.breaker.RecordFailure()

	s.Equal(StateClosed, s.breaker.State())
	s.True(s.breaker.Allow())
}

func (s *CircuitBreakerTestSuite) TestHalfOpenAfterResetTimeout() {
	s.trip()

	s.clock = s.clock.Add(30 * time.Second)
	s.False(s.breaker.Allow())

	s.clock = s.clock.Add(31 * time.Second)
	s.True(s.breaker.Allow())
	s.Equal(StateHalfOpen, s.breaker.State())
}

func (s *CircuitBreakerTestSuite) TestHalfOpenClosesAfterSuccesses() {
	s.trip()
	s.clock = s.clock.Add(2 * time.Minute)
	s.Require().True(s.breaker.Allow())

	s.breaker.RecordSuccess()
	s.Equal(StateHalfOpen, s.breaker.State())
	s.breaker.RecordSuccess()
	s.Equal(StateClosed, s.breaker.State())
}

func (s *CircuitBreakerTestSuite) TestHalfOpenFailureReopens() {
	s.trip()
	s.clock = s.clock.Add(2 * time.Minute)
	s.Require().True(s.breaker.Allow())

	s.True(s.breaker.RecordFailure())
	s.Equal(StateOpen, s.breaker.State())
	s.False(s.breaker.Allow())
}

func (s *CircuitBreakerTestSuite) TestReset() {
	s.trip()
	s.breaker.Reset()

	s.Equal(StateClosed, s.breaker.State())
	s.Equal("closed", s.breaker.State().String())
}

type GuardedBudgetServiceTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	next    *service_mocks.MockBudgetServiceInterface
	breaker *CircuitBreaker
	guarded *GuardedBudgetService
}

func TestGuardedBudgetServiceSuite(t *testing.T) {
	suite.Run(t, new(GuardedBudgetServiceTestSuite))
}

func (s *GuardedBudgetServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.next = service_mocks.NewMockBudgetServiceInterface(s.ctrl)
	s.breaker = NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 2, ResetTimeout: time.Hour, HalfOpenMaxSucc: 1})
	s.guarded = NewGuardedBudgetService(s.next, s.breaker, logging.Discard())
}

func (s *GuardedBudgetServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *GuardedBudgetServiceTestSuite) TestPassesResultsThrough() {
	s.next.EXPECT().Balance().Return(decimal.RequireFromString("12.50"), nil)

	balance, err := s.guarded.Balance()

	s.Require().NoError(err)
	s.Equal("12.50", balance.StringFixed(2))
}

func (s *GuardedBudgetServiceTestSuite) TestStorageFailuresOpenTheCircuit() {
	readErr := apierrors.NewIOError(apierrors.StorageReadFailed, errors.New("disk gone"))
	s.next.EXPECT().Report(gomock.Any()).Return(nil, readErr).Times(2)

	for i := 0; i < 2; i++ {
		_, err := s.guarded.Report(models.TransactionFilter{})
		s.ErrorIs(err, readErr)
	}

	_, err := s.guarded.Report(models.TransactionFilter{})
	s.ErrorIs(err, ErrCircuitOpen)
	s.Equal(apierrors.StorageUnavailable, apierrors.CodeOf(err))

	s.ErrorIs(s.guarded.HealthCheck(), ErrCircuitOpen)
}

func (s *GuardedBudgetServiceTestSuite) TestFormatErrorsDoNotTrip() {
	formatErr := apierrors.NewFormatError(apierrors.FormatInvalidDocument, "", errors.New("unexpected EOF"))
	s.next.EXPECT().Summary().Return(nil, formatErr).Times(3)

	for i := 0; i < 3; i++ {
		_, err := s.guarded.Summary()
		s.True(apierrors.IsFormat(err))
	}
	s.Equal(StateClosed, s.breaker.State())
}

func (s *GuardedBudgetServiceTestSuite) TestAddTransactionPassesThrough() {
	input := models.TransactionInput{
		Type:     models.TransactionTypeIncome,
		Amount:   decimal.NewFromInt(10),
		Category: "gift",
		Date:     models.NewDate(2024, time.January, 5),
	}
	stored, err := models.NewTransaction(input)
	s.Require().NoError(err)
	s.next.EXPECT().AddTransaction(input).Return(stored, nil)

	tx, err := s.guarded.AddTransaction(input)

	s.Require().NoError(err)
	s.Equal(stored.ID, tx.ID)
}
