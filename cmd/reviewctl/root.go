package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/database"
	"github.com/xiebiao/bookreview/pkg/logger"
)

// cli 命令共享的状态
// loadConfig可在测试中替换
type cli struct {
	in  io.Reader
	out io.Writer

	loadConfig func() (*config.Config, error)

	cfg      *config.Config
	log      *slog.Logger
	closeLog func() error
}

func newCLI(in io.Reader, out io.Writer) *cli {
	return &cli{in: in, out: out, loadConfig: config.Load}
}

func newRootCmd(a *cli) *cobra.Command {
	root := &cobra.Command{
		Use:          "reviewctl",
		Short:        "图书评论服务运维工具",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.closeLog != nil {
				return a.closeLog()
			}
			return nil
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)

	root.AddCommand(
		newMigrateCmd(a),
		newRecomputeCmd(a),
		newUserCmd(a),
		newEventsCmd(a),
	)
	return root
}

// setup 加载配置，日志输出到stderr（stdout留给命令结果）
func (a *cli) setup() error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	log, closeLog, err := logger.New(cfg.Log.Level, cfg.Log.Format, "stderr")
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}

	a.cfg = cfg
	a.log = log
	a.closeLog = closeLog
	return nil
}

// openDB 打开数据库（不迁移），调用方负责关闭
func (a *cli) openDB() (*gorm.DB, error) {
	db, err := database.Open(a.cfg.Database, false)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func (a *cli) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}
