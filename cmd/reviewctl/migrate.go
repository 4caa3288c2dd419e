package main

import (
	"github.com/spf13/cobra"

	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/database"
)

func newMigrateCmd(a *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "创建或更新表结构（users、books、reviews）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.AutoMigrate(db); err != nil {
				return err
			}

			a.printf("迁移完成 (%s)\n", a.cfg.Database.Driver)
			return nil
		},
	}
}
