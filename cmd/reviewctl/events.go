package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	appreview "github.com/xiebiao/bookreview/internal/application/review"
	"github.com/xiebiao/bookreview/pkg/mq"
)

func newEventsCmd(a *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "评论事件",
	}
	cmd.AddCommand(newEventsWatchCmd(a))
	return cmd
}

func newEventsWatchCmd(a *cli) *cobra.Command {
	var (
		queue string
		keys  []string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "订阅评论事件并逐行打印，Ctrl+C退出",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			consumer, err := mq.NewConsumer(a.cfg.MQ.URL, a.cfg.MQ.Exchange, "topic", queue, keys, a.log)
			if err != nil {
				return err
			}
			defer consumer.Close()

			return consumer.Consume(cmd.Context(), func(routingKey string, body []byte) error {
				line, err := formatEvent(routingKey, body)
				if err != nil {
					// 格式不对的消息重新入队没有意义，打印后Ack
					a.log.Warn("无法解析的事件", slog.String("routing_key", routingKey), slog.Any("error", err))
					return nil
				}
				a.printf("%s\n", line)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&queue, "queue", "reviewctl.watch", "队列名称")
	cmd.Flags().StringSliceVar(&keys, "key", []string{"review.#"}, "绑定的路由键，可重复")
	return cmd
}

// formatEvent 单行输出
//
//	2024-05-01T10:00:00Z review.created review=7 book=3 user=2 rating=4 average=3.50
func formatEvent(routingKey string, body []byte) (string, error) {
	var e appreview.Event
	if err := json.Unmarshal(body, &e); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s review=%d book=%d user=%d rating=%d average=%.2f",
		e.OccurredAt.UTC().Format("2006-01-02T15:04:05Z"), routingKey,
		e.ReviewID, e.BookID, e.UserID, e.Rating, e.AverageRating), nil
}
