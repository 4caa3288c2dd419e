package review

import (
	"context"
	"log/slog"
	"time"

	"github.com/xiebiao/bookreview/pkg/circuitbreaker"
)

// 熔断条件：连续失败3次，或窗口内至少10次发布且失败率不低于50%
const (
	tripConsecutiveFailures = 3
	tripMinRequests         = 10
	tripFailureRate         = 0.5
)

// GuardedPublisher 带熔断的事件发布
// 消息队列发布持续失败后熔断，后续事件直接丢弃（返回ErrOpen），
// 评论写请求不再等待发布超时；OpenTimeout后放行一个探测事件。
type GuardedPublisher struct {
	next    EventPublisher
	breaker *circuitbreaker.CircuitBreaker
}

// NewGuardedPublisher 包装next
func NewGuardedPublisher(next EventPublisher, log *slog.Logger) *GuardedPublisher {
	breaker := circuitbreaker.New("review-events", circuitbreaker.Settings{
		Window:      time.Minute,
		OpenTimeout: 30 * time.Second,
		ReadyToTrip: shouldTrip,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			log.Warn("事件发布熔断器状态变化",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
	return &GuardedPublisher{next: next, breaker: breaker}
}

// Publish 熔断打开时返回circuitbreaker.ErrOpen，不调用next
func (p *GuardedPublisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	return p.breaker.Execute(func() error {
		return p.next.Publish(ctx, routingKey, message)
	})
}

// State 熔断器当前状态
func (p *GuardedPublisher) State() circuitbreaker.State {
	return p.breaker.State()
}

// shouldTrip 连接时断时续时连续失败次数上不去，按失败率兜底
func shouldTrip(c circuitbreaker.Counts) bool {
	if c.ConsecutiveFailures >= tripConsecutiveFailures {
		return true
	}
	return c.Requests >= tripMinRequests && c.FailureRate() >= tripFailureRate
}
