// reviewctl 图书评论服务的运维命令行
//
//	reviewctl migrate                         建表/加字段
//	reviewctl recompute --book-id 3           重算单本图书的平均评分
//	reviewctl recompute --all                 重算全部图书
//	reviewctl user create --name 张三 --email zs@example.com
//	reviewctl events watch                    订阅并打印评论事件
//
// 配置与API服务共用（config/config.yaml + BOOKREVIEW_*环境变量）
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newCLI(os.Stdin, os.Stdout)).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
