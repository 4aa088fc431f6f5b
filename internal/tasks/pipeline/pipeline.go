// Package pipeline 把 initialize / refresh 注册为调度任务。
package pipeline

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/iceymoss/weibo-trend/internal/core"
	"github.com/iceymoss/weibo-trend/internal/tasks"
	"github.com/iceymoss/weibo-trend/pkg/lock"
	"github.com/iceymoss/weibo-trend/pkg/logger"
)

const (
	TaskInitialize = "lifecycle:initialize"
	TaskRefresh    = "lifecycle:refresh"
)

// Runner 流水线
type Runner interface {
	Initialize(ctx context.Context) error
	Refresh(ctx context.Context) error
}

// Register initialize 只能手动触发；refreshCron 非空时 refresh 随调度器自动启动
func Register(r Runner, refreshCron string) {
	tasks.Register(TaskInitialize, func() core.Task {
		return core.TaskFunc{Name: TaskInitialize, Fn: skipWhenLocked(TaskInitialize, func(ctx context.Context) error {
			return r.Initialize(ctx)
		})}
	})

	refresh := func() core.Task {
		return core.TaskFunc{Name: TaskRefresh, Fn: skipWhenLocked(TaskRefresh, func(ctx context.Context) error {
			return r.Refresh(ctx)
		})}
	}
	if refreshCron == "" {
		tasks.Register(TaskRefresh, refresh)
		return
	}
	tasks.RegisterAuto(TaskRefresh, refreshCron, refresh, nil)
}

// skipWhenLocked 上一次还没跑完时本次直接跳过，不算失败
func skipWhenLocked(name string, fn func(ctx context.Context) error) func(context.Context, map[string]any) error {
	return func(ctx context.Context, _ map[string]any) error {
		err := fn(ctx)
		if errors.Is(err, lock.ErrLocked) {
			logger.Warn("pipeline busy, run skipped", zap.String("task", name))
			return nil
		}
		return err
	}
}
