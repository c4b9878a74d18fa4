package clients

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/ocf/pkg/config"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
)

// ErrCircuitOpen is wrapped by errors returned while the circuit is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitState represents the state of a circuit breaker
type CircuitState int32

const (
	// StateClosed allows all requests to pass through
	StateClosed CircuitState = iota
	// StateOpen blocks all requests
	StateOpen
	// StateHalfOpen allows a limited number of requests to test if the service has recovered
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig is the configuration for circuit breaker
type CircuitBreakerConfig struct {
	FailureThreshold int           // consecutive failures before opening
	SuccessThreshold int           // half-open successes before closing
	Timeout          time.Duration // time spent open before probing
	HalfOpenLimit    int           // concurrent probes allowed while half-open
}

// CircuitBreakerConfigFrom reads the breaker settings from the reliability section.
func CircuitBreakerConfigFrom(cfg config.ReliabilityConfig) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: cfg.FailureThreshold,
		SuccessThreshold: cfg.SuccessThreshold,
		Timeout:          cfg.OpenTimeout,
	}
}

// CircuitBreaker stops calls to a failing dependency for a while so that it can
// recover.
type CircuitBreaker struct {
	config CircuitBreakerConfig
	logger *zap.Logger
	now    func() time.Time

	mu                   sync.Mutex
	state                CircuitState
	consecutiveFailures  int
	consecutiveSuccesses int
	halfOpenInFlight     int
	openedAt             time.Time
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig, logger *zap.Logger) *CircuitBreaker {
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold < 1 {
		cfg.SuccessThreshold = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.HalfOpenLimit < 1 {
		cfg.HalfOpenLimit = cfg.SuccessThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CircuitBreaker{
		config: cfg,
		logger: logger.With(zap.String("component", "circuit_breaker")),
		now:    time.Now,
	}
}

// Execute runs fn with circuit breaker protection.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.Allow() {
		return ocferrors.Wrap(ErrCircuitOpen, ocferrors.ErrorTypeConnection, "request rejected").
			WithDetail("circuit", cb.State().String())
	}

	err := fn()
	if err != nil && ocferrors.IsRetryable(err) {
		cb.RecordFailure()
		return err
	}
	// errors the caller caused say nothing about the health of the dependency
	cb.RecordSuccess()
	return err
}

// Allow reports whether a request may proceed. While half-open it admits up to
// HalfOpenLimit probes.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.config.Timeout {
			return false
		}
		cb.setState(StateHalfOpen)
		fallthrough
	case StateHalfOpen:
		if cb.halfOpenInFlight >= cb.config.HalfOpenLimit {
			return false
		}
		cb.halfOpenInFlight++
		return true
	default:
		return false
	}
}

// RecordSuccess records a successful request.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.consecutiveFailures = 0
	case StateHalfOpen:
		cb.halfOpenInFlight--
		cb.consecutiveSuccesses++
		if cb.consecutiveSuccesses >= cb.config.SuccessThreshold {
			cb.setState(StateClosed)
		}
	}
}

// RecordFailure records a failed request. Any failure while half-open reopens
// the circuit.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.consecutiveFailures++
		if cb.consecutiveFailures >= cb.config.FailureThreshold {
			cb.setState(StateOpen)
		}
	case StateHalfOpen:
		cb.setState(StateOpen)
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// setState must be called with mu held.
func (cb *CircuitBreaker) setState(s CircuitState) {
	failures := cb.consecutiveFailures

	cb.state = s
	cb.consecutiveFailures = 0
	cb.consecutiveSuccesses = 0
	cb.halfOpenInFlight = 0

	switch s {
	case StateOpen:
		cb.openedAt = cb.now()
		cb.logger.Warn("circuit breaker opened",
			zap.Time("retry_after", cb.openedAt.Add(cb.config.Timeout)),
			zap.Int("consecutive_failures", failures))
	case StateHalfOpen:
		cb.logger.Info("circuit breaker half-open")
	case StateClosed:
		cb.logger.Info("circuit breaker closed")
	}
}
