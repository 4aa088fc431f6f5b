package repo

import (
	"context"

	"github.com/iceymoss/weibo-trend/pkg/db/objects"
	"github.com/iceymoss/weibo-trend/pkg/transaction"
)

type RunRepo struct {
	tx *transaction.Manager
}

// Start 开始记录日志
func (r *RunRepo) Start(ctx context.Context, run *objects.PipelineRun) error {
	return r.tx.DB(ctx).Create(run).Error
}

// Finish 流水线结束更新日志
func (r *RunRepo) Finish(ctx context.Context, run *objects.PipelineRun) error {
	return r.tx.DB(ctx).Save(run).Error
}

// Recent 最近的执行记录
func (r *RunRepo) Recent(ctx context.Context, limit int) ([]objects.PipelineRun, error) {
	var list []objects.PipelineRun
	err := r.tx.DB(ctx).Order("id DESC").Limit(limit).Find(&list).Error
	return list, err
}
