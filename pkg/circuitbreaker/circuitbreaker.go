package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned without calling fn while the breaker is open.
var ErrOpen = errors.New("circuit breaker is open")

// State 熔断器状态
type State int

const (
	StateClosed   State = iota // 正常，允许请求通过
	StateOpen                  // 熔断，直接拒绝
	StateHalfOpen              // 试探恢复，只放行有限请求
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// Config 熔断器配置
type Config struct {
	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold int
	// SuccessThreshold successes in half-open close it again.
	SuccessThreshold int
	// OpenFor is how long the breaker stays open before probing.
	OpenFor time.Duration
	// HalfOpenMaxRequests caps concurrent trial calls while half-open.
	HalfOpenMaxRequests int
}

func DefaultConfig() Config {
	return Config{
		FailureThreshold:    5,
		SuccessThreshold:    2,
		OpenFor:             30 * time.Second,
		HalfOpenMaxRequests: 1,
	}
}

type CircuitBreaker struct {
	mu       sync.Mutex
	cfg      Config
	now      func() time.Time
	onChange func(from, to State)

	state     State
	failures  int
	successes int
	inFlight  int
	openedAt  time.Time
	// generation changes on every transition; results of calls admitted in
	// an earlier generation are dropped.
	generation uint64
}

// New creates a closed breaker. onChange, if non-nil, is called on every
// state transition while the breaker lock is held; it must not call back in.
func New(cfg Config, onChange func(from, to State)) *CircuitBreaker {
	return &CircuitBreaker{cfg: cfg, now: time.Now, onChange: onChange}
}

// Execute runs fn unless the breaker is open.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	gen, err := cb.before()
	if err != nil {
		return err
	}
	err = fn()
	cb.after(gen, err)
	return err
}

func (cb *CircuitBreaker) before() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.OpenFor {
		cb.setState(StateHalfOpen)
	}

	switch cb.state {
	case StateOpen:
		return 0, ErrOpen
	case StateHalfOpen:
		if cb.inFlight >= cb.cfg.HalfOpenMaxRequests {
			return 0, ErrOpen
		}
		cb.inFlight++
	}
	return cb.generation, nil
}

func (cb *CircuitBreaker) after(gen uint64, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if gen != cb.generation {
		return
	}

	halfOpen := cb.state == StateHalfOpen
	if halfOpen {
		cb.inFlight--
	}

	if err != nil {
		cb.failures++
		if halfOpen || cb.failures >= cb.cfg.FailureThreshold {
			cb.setState(StateOpen)
		}
		return
	}

	cb.failures = 0
	if halfOpen {
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.setState(StateClosed)
		}
	}
}

// setState resets the counters of the state being entered. Caller holds mu.
func (cb *CircuitBreaker) setState(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	cb.generation++
	cb.successes = 0
	cb.inFlight = 0
	switch to {
	case StateOpen:
		cb.openedAt = cb.now()
	case StateClosed:
		cb.failures = 0
	}
	if cb.onChange != nil {
		cb.onChange(from, to)
	}
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
