package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/iceymoss/weibo-trend/internal/core"
	"github.com/iceymoss/weibo-trend/internal/tasks"
	"github.com/iceymoss/weibo-trend/pkg/logger"
)

const timeLayout = "2006-01-02 15:04:05"

// DefaultTimeout 单次任务的超时，一次完整的抓取流水线耗时较长
const DefaultTimeout = 65 * time.Minute

type registeredJob struct {
	task    core.Task
	params  map[string]any
	entryID cron.EntryID
}

type Scheduler struct {
	cron       *cron.Cron
	Stats      *StatManager
	timeout    time.Duration
	log        *zap.Logger
	mu         sync.RWMutex
	registered map[string]registeredJob
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		Stats:      NewStatManager(),
		timeout:    DefaultTimeout,
		log:        logger.Named("scheduler"),
		registered: make(map[string]registeredJob),
	}
}

// AddJob 添加任务
func (s *Scheduler) AddJob(cronExpr, taskName, uniqueJobName string, params map[string]any, source string) error {
	// 1. 获取任务实现
	taskInstance, err := tasks.GetTask(taskName)
	if err != nil {
		return err
	}

	// 2. 包装执行逻辑并加入 Cron
	wrapper := func() {
		s.runTaskWithStats(uniqueJobName, taskInstance, params)
	}
	entryID, err := s.cron.AddFunc(cronExpr, wrapper)
	if err != nil {
		return err
	}

	// 3. 初始化状态
	next := s.cron.Entry(entryID).Next
	s.Stats.Set(uniqueJobName, &JobStats{
		Name:        uniqueJobName,
		CronExpr:    cronExpr,
		Status:      "Idle",
		LastResult:  "Pending",
		Source:      source,
		rawNext:     next,
		NextRunTime: formatTime(next),
	})

	// 保存引用以便手动触发
	s.mu.Lock()
	s.registered[uniqueJobName] = registeredJob{taskInstance, params, entryID}
	s.mu.Unlock()
	return nil
}

// runTaskWithStats 执行并记录状态
func (s *Scheduler) runTaskWithStats(name string, task core.Task, params map[string]any) {
	// 更新开始状态
	s.Stats.Update(name, func(stat *JobStats) {
		stat.Status = "Running"
		stat.LastRunTime = time.Now().Format(timeLayout)
		stat.RunCount++
	})

	s.log.Info("[Schedule] starting job", zap.String("job", name))

	// 执行 (带超时控制)
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := task.Run(ctx, params)

	next := s.nextRun(name)
	// 更新结束状态
	s.Stats.Update(name, func(stat *JobStats) {
		if err != nil {
			stat.LastResult = fmt.Sprintf("Error: %v", err)
			stat.Status = "Error"
		} else {
			stat.LastResult = "Success"
			stat.Status = "Idle"
		}
		if !next.IsZero() {
			stat.rawNext = next
			stat.NextRunTime = formatTime(next)
		}
	})
	if err != nil {
		s.log.Error("[Schedule] job failed", zap.String("job", name), zap.Error(err))
	} else {
		s.log.Info("[Schedule] job finished", zap.String("job", name))
	}
}

// ManualRun 手动触发，异步执行
func (s *Scheduler) ManualRun(uniqueJobName string) error {
	s.mu.RLock()
	reg, ok := s.registered[uniqueJobName]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job not found")
	}
	go s.runTaskWithStats(uniqueJobName, reg.task, reg.params)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) nextRun(name string) time.Time {
	s.mu.RLock()
	reg, ok := s.registered[name]
	s.mu.RUnlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(reg.entryID).Next
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}
