package services

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	apierrors "budget-tracker/internal/errors"
	"budget-tracker/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

type CircuitBreakerConfig struct {
	MaxFailures     int
	ResetTimeout    time.Duration
	HalfOpenMaxSucc int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxFailures:     5,
		ResetTimeout:    30 * time.Second,
		HalfOpenMaxSucc: 3,
	}
}

type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker counts consecutive storage failures and rejects calls for
// ResetTimeout once MaxFailures is reached
type CircuitBreaker struct {
	mu                sync.Mutex
	config            CircuitBreakerConfig
	state             CircuitState
	failures          int
	halfOpenSuccesses int
	lastFailureTime   time.Time
	now               func() time.Time
}

func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
		now:    time.Now,
	}
}

// Allow reports whether a call may proceed. An open breaker moves to
// half-open once the reset timeout has passed.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && cb.now().Sub(cb.lastFailureTime) > cb.config.ResetTimeout {
		cb.state = StateHalfOpen
		cb.halfOpenSuccesses = 0
	}

	return cb.state != StateOpen
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.halfOpenSuccesses++
		if cb.halfOpenSuccesses >= cb.config.HalfOpenMaxSucc {
			cb.transitionToClosed()
		}
	case StateClosed:
		cb.failures = 0
	}
}

// RecordFailure registers a failed call and reports whether it opened the breaker
func (cb *CircuitBreaker) RecordFailure() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailureTime = cb.now()

	switch cb.state {
	case StateHalfOpen:
		cb.transitionToOpen()
		return true
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.config.MaxFailures {
			cb.transitionToOpen()
			return true
		}
	}
	return false
}

func (cb *CircuitBreaker) transitionToClosed() {
	cb.state = StateClosed
	cb.failures = 0
	cb.halfOpenSuccesses = 0
}

func (cb *CircuitBreaker) transitionToOpen() {
	cb.state = StateOpen
	cb.halfOpenSuccesses = 0
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transitionToClosed()
}

// GuardedBudgetService stops hitting an unreachable store after repeated
// storage failures. Validation and format errors do not trip the breaker.
type GuardedBudgetService struct {
	next    BudgetServiceInterface
	breaker *CircuitBreaker
	logger  *slog.Logger
}

func NewGuardedBudgetService(next BudgetServiceInterface, breaker *CircuitBreaker, logger *slog.Logger) *GuardedBudgetService {
	return &GuardedBudgetService{
		next:    next,
		breaker: breaker,
		logger:  logger,
	}
}

func (g *GuardedBudgetService) guard(call func() error) error {
	if !g.breaker.Allow() {
		return apierrors.NewIOError(apierrors.StorageUnavailable, ErrCircuitOpen)
	}

	err := call()
	if err != nil && apierrors.IsIO(err) {
		if g.breaker.RecordFailure() {
			g.logger.Warn("storage circuit opened", "error", err)
		}
		return err
	}

	g.breaker.RecordSuccess()
	return err
}

func (g *GuardedBudgetService) AddTransaction(input models.TransactionInput) (models.Transaction, error) {
	var tx models.Transaction
	err := g.guard(func() (err error) {
		tx, err = g.next.AddTransaction(input)
		return err
	})
	return tx, err
}

func (g *GuardedBudgetService) AppendTransactions(transactions []models.Transaction) error {
	return g.guard(func() error {
		return g.next.AppendTransactions(transactions)
	})
}

func (g *GuardedBudgetService) ListTransactions() ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := g.guard(func() (err error) {
		transactions, err = g.next.ListTransactions()
		return err
	})
	return transactions, err
}

func (g *GuardedBudgetService) Summary() (map[string]models.CategorySummary, error) {
	var summary map[string]models.CategorySummary
	err := g.guard(func() (err error) {
		summary, err = g.next.Summary()
		return err
	})
	return summary, err
}

func (g *GuardedBudgetService) Balance() (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := g.guard(func() (err error) {
		balance, err = g.next.Balance()
		return err
	})
	return balance, err
}

func (g *GuardedBudgetService) Report(filter models.TransactionFilter) (*models.Report, error) {
	var report *models.Report
	err := g.guard(func() (err error) {
		report, err = g.next.Report(filter)
		return err
	})
	return report, err
}

func (g *GuardedBudgetService) HealthCheck() error {
	return g.guard(g.next.HealthCheck)
}
