// Package rating 维护图书的平均评分
//
// 不变式：Book.AverageRating == 该书全部评论评分的算术平均值，没有评论时为0。
// 每次评论新增、修改、删除后由application层在同一事务内调用Recompute。
package rating

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/pkg/metrics"
	"github.com/xiebiao/bookreview/pkg/tracing"
)

// Aggregator 平均评分聚合器
// 设计说明:
// 1. 每次都从评论表全量重算,不做增量更新(增量更新在并发下容易漂移)
// 2. 无论结果是否变化都写回,操作幂等
// 3. 读写都通过context中的事务进行,失败时整个评论写操作回滚
type Aggregator struct {
	reviews review.Repository
	books   book.Repository
}

// NewAggregator 创建评分聚合器
func NewAggregator(reviews review.Repository, books book.Repository) *Aggregator {
	return &Aggregator{reviews: reviews, books: books}
}

// Recompute 重新计算并写回图书平均评分,返回新的平均值
func (a *Aggregator) Recompute(ctx context.Context, bookID uint) (avg float64, err error) {
	ctx, span := tracing.StartSpan(ctx, "rating", "rating.Recompute")
	span.SetAttributes(attribute.Int64("book.id", int64(bookID)))
	start := time.Now()
	defer func() {
		metrics.ObserveHistogram(metrics.RatingRecomputeDuration, time.Since(start).Seconds())
		if err != nil {
			metrics.IncCounter(metrics.RatingRecomputeFailuresTotal)
		}
		span.SetAttributes(attribute.Float64("rating.average", avg))
		tracing.EndSpan(span, err)
	}()

	// 1. 读取全部评分
	ratings, err := a.reviews.ListRatingsByBook(ctx, bookID)
	if err != nil {
		return 0, err
	}

	// 2. 计算平均值
	avg = Mean(ratings)

	// 3. 无条件写回
	if err := a.books.UpdateAverageRating(ctx, bookID, avg); err != nil {
		return 0, err
	}

	return avg, nil
}

// Mean 计算评分的算术平均值
// 空列表返回0;结果保留float64完整精度,不做四舍五入
func Mean(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}
