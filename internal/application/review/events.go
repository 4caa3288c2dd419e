package review

import (
	"context"
	"time"
)

// 评论事件路由键
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// RoutingKey 事件路由键，如review.created
func RoutingKey(action string) string {
	return "review." + action
}

// Event 评论变更事件
// AverageRating是本次变更后重新计算的图书平均评分
type Event struct {
	Action        string    `json:"action"`
	ReviewID      uint      `json:"reviewId"`
	BookID        uint      `json:"bookId"`
	UserID        uint      `json:"userId"`
	Rating        int       `json:"rating"`
	AverageRating float64   `json:"averageRating"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// EventPublisher 事件发布接口
// *mq.Publisher实现该接口；未启用MQ时使用NoopPublisher
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// NoopPublisher 丢弃所有事件
type NoopPublisher struct{}

// Publish 什么都不做
func (NoopPublisher) Publish(context.Context, string, interface{}) error {
	return nil
}
