// Package metrics 提供基于Prometheus的指标收集
//
// # 指标清单
//
// HTTP层（由middleware.Metrics记录）：
//   - http_requests_total{method,path,status}
//   - http_request_duration_seconds{method,path}
//   - http_requests_in_progress
//
// 业务层：
//   - review_mutations_total{action}：评论新增/修改/删除次数（action=created|updated|deleted）
//   - rating_recompute_duration_seconds：平均评分重算耗时
//   - rating_recompute_failures_total：重算失败次数（会导致评论写操作回滚）
//   - messages_published_total{exchange,routing_key,result}：评论事件发布结果
//   - rate_limited_requests_total：被限流拒绝的写请求
//
// # 使用示例
//
//	metrics.InitMetrics()
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	start := time.Now()
//	avg, err := aggregator.Recompute(ctx, bookID)
//	metrics.ObserveHistogram(metrics.RatingRecomputeDuration, time.Since(start).Seconds())
//
// # 约定
//
//  1. Counter以_total结尾，Histogram以单位结尾（_seconds）
//  2. 不使用高基数标签：path使用路由模板（/api/v1/books/:id），不用真实URL
//  3. InitMetrics未调用时所有指标为nil，辅助函数直接忽略（单元测试无需注册指标）
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	initOnce sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method（GET/POST）、path（路由模板）、status（200/404）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 业务指标

	// ReviewMutationsTotal 评论写操作总数（Counter）
	// 标签：action（created/updated/deleted）
	ReviewMutationsTotal *prometheus.CounterVec

	// RatingRecomputeDuration 平均评分重算耗时（Histogram）
	RatingRecomputeDuration prometheus.Histogram

	// RatingRecomputeFailuresTotal 平均评分重算失败总数（Counter）
	RatingRecomputeFailuresTotal prometheus.Counter

	// 消息队列指标

	// MessagesPublishedTotal 事件发布总数（Counter）
	// 标签：exchange、routing_key、result（success/failure）
	MessagesPublishedTotal *prometheus.CounterVec

	// 限流指标

	// RateLimitedTotal 被限流拒绝的请求总数（Counter）
	RateLimitedTotal prometheus.Counter
)

// InitMetrics 初始化所有Prometheus指标
//
// 使用promauto注册到默认Registry，重复调用只生效一次
func InitMetrics() {
	initOnce.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP请求总数",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP请求耗时（秒）",
				// 桶设置：1ms、10ms、100ms、500ms、1s、5s、10s
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"method", "path"},
		)

		HTTPRequestsInProgress = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_progress",
				Help: "正在处理的HTTP请求数",
			},
		)

		ReviewMutationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "review_mutations_total",
				Help: "评论写操作总数",
			},
			[]string{"action"},
		)

		RatingRecomputeDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name: "rating_recompute_duration_seconds",
				Help: "平均评分重算耗时（秒）",
				// 重算是一次聚合查询+一次单列更新，通常在毫秒级
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		)

		RatingRecomputeFailuresTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rating_recompute_failures_total",
				Help: "平均评分重算失败总数",
			},
		)

		MessagesPublishedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messages_published_total",
				Help: "事件发布总数",
			},
			[]string{"exchange", "routing_key", "result"},
		)

		RateLimitedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_limited_requests_total",
				Help: "被限流拒绝的请求总数",
			},
		)
	})
}

// IncCounter 递增Counter（便捷函数）
func IncCounter(counter prometheus.Counter) {
	if counter == nil {
		return
	}
	counter.Inc()
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	if counter == nil {
		return
	}
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	if gauge == nil {
		return
	}
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	if gauge == nil {
		return
	}
	gauge.Dec()
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	if histogram == nil {
		return
	}
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	if histogram == nil {
		return
	}
	histogram.With(labels).Observe(value)
}
