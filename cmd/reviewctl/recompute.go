package main

import (
	"errors"

	"github.com/spf13/cobra"

	appreview "github.com/xiebiao/bookreview/internal/application/review"
	"github.com/xiebiao/bookreview/internal/domain/rating"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/database"
)

var errRecomputeTarget = errors.New("必须指定 --book-id 或 --all 之一")

func newRecomputeCmd(a *cli) *cobra.Command {
	var (
		bookID uint
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "按评论重新计算图书平均评分",
		Long:  "修复直接改库等原因造成的平均评分与评论不一致。每本书在一个事务内重算。",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if (bookID == 0) == !all {
				return errRecomputeTarget
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			bookRepo := database.NewBookRepository(db)
			aggregator := rating.NewAggregator(database.NewReviewRepository(db), bookRepo)
			uc := appreview.NewRecomputeUseCase(bookRepo, aggregator, database.NewTxManager(db), a.log)

			ctx := cmd.Context()
			if all {
				n, err := uc.All(ctx)
				if err != nil {
					return err
				}
				a.printf("已重算 %d 本图书\n", n)
				return nil
			}

			avg, err := uc.One(ctx, bookID)
			if err != nil {
				return err
			}
			a.printf("图书 %d 平均评分: %g\n", bookID, avg)
			return nil
		},
	}

	cmd.Flags().UintVar(&bookID, "book-id", 0, "图书ID")
	cmd.Flags().BoolVar(&all, "all", false, "重算全部图书")
	return cmd
}
