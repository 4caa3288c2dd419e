// Package logger 基于log/slog构建结构化日志
//
// 配置项来自config.LogConfig：
//   - level:  debug | info | warn | error
//   - format: text | json
//   - output: stdout | stderr | 文件路径
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// New 根据配置创建Logger
// 返回的closer用于关闭日志文件（输出到stdout/stderr时为空操作）
func New(level, format, output string) (*slog.Logger, func() error, error) {
	w, closer, err := openOutput(output)
	if err != nil {
		return nil, nil, err
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler), closer, nil
}

// ParseLevel 解析日志级别，未知值按info处理
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openOutput(output string) (io.Writer, func() error, error) {
	noop := func() error { return nil }

	switch output {
	case "", "stdout":
		return os.Stdout, noop, nil
	case "stderr":
		return os.Stderr, noop, nil
	}

	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	return f, f.Close, nil
}
