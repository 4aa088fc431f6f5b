package transaction

import (
	"context"

	"gorm.io/gorm"
)

// txContextKey 用于在context中存储事务的标识键
type txContextKey struct{}

// txValue 记录事务所属的根连接，live 与 staging 的事务互不串用
type txValue struct {
	root *gorm.DB
	tx   *gorm.DB
}

// WithTransaction 将 root 上开启的事务对象注入到context中，用于事务传递
func WithTransaction(ctx context.Context, root, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txContextKey{}, txValue{root: root, tx: tx})
}

// InTransaction 判断 ctx 中是否已携带 root 上的事务
func InTransaction(ctx context.Context, root *gorm.DB) bool {
	v, ok := ctx.Value(txContextKey{}).(txValue)
	return ok && v.tx != nil && v.root == root
}

// GetTransactionOrDB 从context中获取事务对象，不存在则返回原数据库连接
// 确保始终使用正确的上下文
func GetTransactionOrDB(ctx context.Context, defaultDB *gorm.DB) *gorm.DB {
	if v, ok := ctx.Value(txContextKey{}).(txValue); ok && v.tx != nil && v.root == defaultDB {
		return v.tx.WithContext(ctx)
	}
	return defaultDB.WithContext(ctx)
}
