// Package circuitbreaker 熔断器
//
// 用于保护评论事件发布：消息队列不可用时快速失败，
// 避免每个评论写请求都等待发布超时。
//
// 状态转换：
//
//	CLOSED --(ReadyToTrip)--> OPEN --(OpenTimeout)--> HALF_OPEN --(探测成功)--> CLOSED
//	                                                       \--(探测失败)--> OPEN
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State 熔断器状态
type State int

const (
	StateClosed   State = iota // 正常放行，统计失败
	StateOpen                  // 熔断，全部快速失败
	StateHalfOpen              // 放行少量探测请求
)

func (s State) String() string {
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

// ErrOpen 熔断器打开时返回
var ErrOpen = errors.New("circuit breaker is open")

// Settings 熔断器配置
type Settings struct {
	// MaxHalfOpenRequests 半开状态允许的探测请求数，默认1
	MaxHalfOpenRequests uint32

	// Window 关闭状态的统计窗口，窗口结束时清零计数；0表示不清零
	Window time.Duration

	// OpenTimeout 打开状态持续时间，默认30s
	OpenTimeout time.Duration

	// ReadyToTrip 关闭状态下每次失败后调用，返回true时熔断
	// 默认连续失败5次
	ReadyToTrip func(c Counts) bool

	// OnStateChange 状态变化回调（日志、指标）
	OnStateChange func(name string, from, to State)
}

// Counts 当前窗口内的统计
type Counts struct {
	Requests             uint32
	TotalFailures        uint32
	ConsecutiveFailures  uint32
	ConsecutiveSuccesses uint32
}

// FailureRate 失败率
func (c Counts) FailureRate() float64 {
	if c.Requests == 0 {
		return 0
	}
	return float64(c.TotalFailures) / float64(c.Requests)
}

// CircuitBreaker 熔断器，并发安全
type CircuitBreaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu         sync.Mutex
	state      State
	generation uint64 // 每次状态切换递增，丢弃跨状态返回的结果
	counts     Counts
	expiry     time.Time
}

// New 创建熔断器
func New(name string, s Settings) *CircuitBreaker {
	if s.MaxHalfOpenRequests == 0 {
		s.MaxHalfOpenRequests = 1
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}
	if s.ReadyToTrip == nil {
		s.ReadyToTrip = func(c Counts) bool { return c.ConsecutiveFailures >= 5 }
	}

	cb := &CircuitBreaker{name: name, settings: s, now: time.Now}
	cb.resetWindow(cb.now())
	return cb
}

// Name 熔断器名称
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Execute 执行fn
// 熔断时不调用fn，直接返回ErrOpen；否则返回fn的错误
func (cb *CircuitBreaker) Execute(fn func() error) error {
	generation, err := cb.before()
	if err != nil {
		return err
	}

	err = fn()
	cb.after(generation, err == nil)
	return err
}

// State 当前状态
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, _ := cb.current(cb.now())
	return state
}

// Counts 当前统计
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.counts
}

func (cb *CircuitBreaker) before() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, generation := cb.current(cb.now())
	switch {
	case state == StateOpen:
		return generation, ErrOpen
	case state == StateHalfOpen && cb.counts.Requests >= cb.settings.MaxHalfOpenRequests:
		return generation, ErrOpen
	}

	cb.counts.Requests++
	return generation, nil
}

func (cb *CircuitBreaker) after(before uint64, success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()
	state, generation := cb.current(now)
	if generation != before {
		return
	}

	if success {
		cb.counts.ConsecutiveSuccesses++
		cb.counts.ConsecutiveFailures = 0
		if state == StateHalfOpen {
			cb.setState(StateClosed, now)
		}
		return
	}

	cb.counts.TotalFailures++
	cb.counts.ConsecutiveFailures++
	cb.counts.ConsecutiveSuccesses = 0
	switch state {
	case StateClosed:
		if cb.settings.ReadyToTrip(cb.counts) {
			cb.setState(StateOpen, now)
		}
	case StateHalfOpen:
		cb.setState(StateOpen, now)
	}
}

// current 处理到期：关闭状态清零窗口，打开状态转半开
func (cb *CircuitBreaker) current(now time.Time) (State, uint64) {
	switch cb.state {
	case StateClosed:
		if !cb.expiry.IsZero() && !now.Before(cb.expiry) {
			cb.resetWindow(now)
		}
	case StateOpen:
		if !now.Before(cb.expiry) {
			cb.setState(StateHalfOpen, now)
		}
	}
	return cb.state, cb.generation
}

func (cb *CircuitBreaker) setState(state State, now time.Time) {
	if cb.state == state {
		return
	}

	prev := cb.state
	cb.state = state
	cb.generation++
	cb.counts = Counts{}

	switch state {
	case StateClosed:
		cb.resetWindow(now)
	case StateOpen:
		cb.expiry = now.Add(cb.settings.OpenTimeout)
	case StateHalfOpen:
		cb.expiry = time.Time{}
	}

	if cb.settings.OnStateChange != nil {
		cb.settings.OnStateChange(cb.name, prev, state)
	}
}

func (cb *CircuitBreaker) resetWindow(now time.Time) {
	cb.counts = Counts{}
	cb.expiry = time.Time{}
	if cb.settings.Window > 0 {
		cb.expiry = now.Add(cb.settings.Window)
	}
}
