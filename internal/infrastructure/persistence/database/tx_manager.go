package database

import (
	"context"

	"gorm.io/gorm"
)

// txKey context中事务DB的key（私有类型，避免与其他包冲突）
type txKey struct{}

// TxManager 事务管理器
// 教学要点:
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB(避免全局变量)
// 3. 支持嵌套事务(GORM自动使用Savepoint)
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// fn内所有Repository操作都在同一事务中执行，fn返回error时ROLLBACK，返回nil时COMMIT
//
// 使用示例:
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    if err := reviewRepo.Delete(ctx, reviewID); err != nil {
//	        return err
//	    }
//	    _, err := aggregator.Recompute(ctx, bookID) // 失败则删除也回滚
//	    return err
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// 已在事务中时复用外层事务（Savepoint）
	return dbFromContext(ctx, m.db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFromContext 从context获取事务DB，没有则使用默认DB
// 所有Repository方法都必须通过它获取DB，否则会脱离事务
// （SQLite单连接下脱离事务的查询会一直等待连接，表现为死锁）
func dbFromContext(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
