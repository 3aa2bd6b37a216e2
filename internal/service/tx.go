package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/repository"
)

// runInTx 在单个事务中执行 fn：fn 返回错误或 panic 时整体回滚
// 未绑定连接时 tx 为 nil，fn 直接作用于原 repo
func runInTx(ctx context.Context, repo *repository.Repository, logger *zap.Logger, fn func(txRepo *repository.Repository) error) error {
	tx, err := repo.BeginTx(ctx)
	if err != nil {
		logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	if err := fn(repo.WithTx(tx)); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}
	return nil
}
