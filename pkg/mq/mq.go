// Package mq 封装RabbitMQ的发布与消费
//
// # 评论事件
//
// 评论新增/修改/删除成功后，application层向Topic Exchange发布事件：
//
//	Exchange: bookreview.events (topic)
//	RoutingKey: review.created | review.updated | review.deleted
//	Body: {"reviewId":1,"bookId":2,"userId":3,"rating":4,"averageRating":3.5,...}
//
// 下游（推荐、通知、搜索索引）按需绑定队列，如"review.*"。
// 发布是尽力而为的：失败只记录日志和指标，不影响评论写操作本身。
//
// # 使用示例
//
//	publisher, err := mq.NewPublisher(url, "bookreview.events", "topic", logger)
//	defer publisher.Close()
//	err = publisher.Publish(ctx, "review.created", event)
//
//	consumer, err := mq.NewConsumer(url, "bookreview.events", "topic", "reviewctl.watch", []string{"review.#"}, logger)
//	err = consumer.Consume(ctx, func(routingKey string, body []byte) error { ... })
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xiebiao/bookreview/pkg/metrics"
)

// Publisher 消息发布者
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      *slog.Logger
}

// NewPublisher 创建消息发布者并声明Exchange
func NewPublisher(url, exchange, exchangeType string, log *slog.Logger) (*Publisher, error) {
	conn, channel, err := dial(url, exchange, exchangeType)
	if err != nil {
		return nil, err
	}

	log.Info("消息发布者已创建", slog.String("exchange", exchange), slog.String("type", exchangeType))

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		log:      log,
	}, nil
}

// Publish 发布JSON消息（持久化）
func (p *Publisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	msg, err := newPublishing(message, time.Now())
	if err != nil {
		return err
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // Mandatory
		false, // Immediate
		msg,
	)

	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.IncCounterVec(metrics.MessagesPublishedTotal, map[string]string{
		"exchange":    p.exchange,
		"routing_key": routingKey,
		"result":      result,
	})

	if err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}

	p.log.DebugContext(ctx, "消息已发布", slog.String("routing_key", routingKey), slog.Int("bytes", len(msg.Body)))
	return nil
}

// Close 关闭Channel和连接
func (p *Publisher) Close() error {
	return closeAll(p.channel, p.conn)
}

// newPublishing 序列化消息
func newPublishing(message interface{}, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(message)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("消息序列化失败: %w", err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
	}, nil
}

// Handler 消息处理函数，返回error时消息重新入队
type Handler func(routingKey string, body []byte) error

// Consumer 消息消费者
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     *slog.Logger
}

// NewConsumer 创建消费者：声明Exchange和Queue，按routingKeys绑定
//
// Topic Exchange通配符：
// - * 匹配一个单词（review.* 匹配 review.created）
// - # 匹配零个或多个单词（review.# 匹配 review.created）
func NewConsumer(url, exchange, exchangeType, queue string, routingKeys []string, log *slog.Logger) (*Consumer, error) {
	conn, channel, err := dial(url, exchange, exchangeType)
	if err != nil {
		return nil, err
	}

	q, err := channel.QueueDeclare(
		queue,
		true,  // Durable
		false, // AutoDelete
		false, // Exclusive
		false, // NoWait
		nil,
	)
	if err != nil {
		_ = closeAll(channel, conn)
		return nil, fmt.Errorf("声明Queue失败: %w", err)
	}

	for _, routingKey := range routingKeys {
		if err := channel.QueueBind(q.Name, routingKey, exchange, false, nil); err != nil {
			_ = closeAll(channel, conn)
			return nil, fmt.Errorf("绑定Queue失败: %w", err)
		}
	}

	log.Info("消息消费者已创建", slog.String("queue", q.Name), slog.Any("routing_keys", routingKeys))

	return &Consumer{
		conn:    conn,
		channel: channel,
		queue:   q.Name,
		log:     log,
	}, nil
}

// Consume 阻塞消费消息，直到ctx取消
// 手动Ack：handler成功后Ack，失败后Nack并重新入队
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	// PrefetchCount=1：处理完一条再取下一条
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("设置Qos失败: %w", err)
	}

	msgs, err := c.channel.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("开始消费失败: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("消息Channel已关闭")
			}

			if err := handler(msg.RoutingKey, msg.Body); err != nil {
				c.log.Warn("消息处理失败，重新入队", slog.String("routing_key", msg.RoutingKey), slog.Any("error", err))
				_ = msg.Nack(false, true)
				continue
			}
			_ = msg.Ack(false)
		}
	}
}

// Close 关闭Channel和连接
func (c *Consumer) Close() error {
	return closeAll(c.channel, c.conn)
}

// dial 建立连接、创建Channel并声明Exchange（持久化，不自动删除）
func dial(url, exchange, exchangeType string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	if err := channel.ExchangeDeclare(exchange, exchangeType, true, false, false, false, nil); err != nil {
		_ = closeAll(channel, conn)
		return nil, nil, fmt.Errorf("声明Exchange失败: %w", err)
	}

	return conn, channel, nil
}

func closeAll(channel *amqp.Channel, conn *amqp.Connection) error {
	var errs []error
	if channel != nil {
		if err := channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
