package review

import (
	"context"
	"log/slog"
	"time"

	"github.com/xiebiao/bookreview/internal/domain/rating"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/database"
	"github.com/xiebiao/bookreview/pkg/metrics"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

// publishTimeout 事件发布超时
const publishTimeout = 3 * time.Second

// Mutator 评论写操作的公共流程
// 教学要点:
// 1. 领域操作 + 平均评分重算在同一个事务中,任何一步失败都整体回滚
// 2. 事务提交后才发布事件,事件中的平均评分一定是已提交的值
// 3. 事件发布失败只记录日志,不影响请求结果
type Mutator struct {
	txManager  *database.TxManager
	aggregator *rating.Aggregator
	publisher  EventPublisher
	log        *slog.Logger
}

// NewMutator 创建评论写操作流程
func NewMutator(txManager *database.TxManager, aggregator *rating.Aggregator, publisher EventPublisher, log *slog.Logger) *Mutator {
	return &Mutator{
		txManager:  txManager,
		aggregator: aggregator,
		publisher:  publisher,
		log:        log,
	}
}

// Run 在事务中执行op并重算op返回评论所属图书的平均评分
func (m *Mutator) Run(ctx context.Context, action string, op func(ctx context.Context) (*review.Review, error)) (rv *review.Review, avg float64, err error) {
	ctx, span := tracing.StartSpan(ctx, "review", "review."+action)
	defer func() { tracing.EndSpan(span, err) }()

	// 1. 事务:领域操作 → 重算评分
	err = m.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		rv, err = op(ctx)
		if err != nil {
			return err
		}
		avg, err = m.aggregator.Recompute(ctx, rv.BookID)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	metrics.IncCounterVec(metrics.ReviewMutationsTotal, map[string]string{"action": action})

	// 2. 发布事件(尽力而为)
	m.publish(ctx, Event{
		Action:        action,
		ReviewID:      rv.ID,
		BookID:        rv.BookID,
		UserID:        rv.UserID,
		Rating:        rv.Rating,
		AverageRating: avg,
		OccurredAt:    time.Now(),
	})

	return rv, avg, nil
}

// publish 发布事件
// 请求ctx取消(客户端断开)不应中断发布,所以脱离取消信号并单独设置超时
func (m *Mutator) publish(ctx context.Context, event Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := m.publisher.Publish(ctx, RoutingKey(event.Action), event); err != nil {
		m.log.WarnContext(ctx, "评论事件发布失败",
			slog.String("action", event.Action),
			slog.Uint64("review_id", uint64(event.ReviewID)),
			slog.Any("error", err),
		)
	}
}
