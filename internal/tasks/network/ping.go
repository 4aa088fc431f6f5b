package network

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iceymoss/weibo-trend/internal/core"
	"github.com/iceymoss/weibo-trend/internal/ingest"
	"github.com/iceymoss/weibo-trend/internal/tasks"
	"github.com/iceymoss/weibo-trend/pkg/logger"
)

const TaskFeedPing = "feed:ping"

// PingTask 检查数据源是否可达，需要在配置文件 jobs 中启用
type PingTask struct {
	newSession func(opts ingest.HTTPOptions) ingest.Session
}

// 只要这个包被 import，任务就会注册
func init() {
	tasks.Register(TaskFeedPing, NewPingTask)
}

func NewPingTask() core.Task {
	return &PingTask{newSession: func(opts ingest.HTTPOptions) ingest.Session {
		return ingest.NewHTTPSession(opts)
	}}
}

func (t *PingTask) Identifier() string {
	return TaskFeedPing
}

// Run params: url（必填）, timeout（秒，默认 5）, user_agent
func (t *PingTask) Run(ctx context.Context, params map[string]any) error {
	url, _ := params["url"].(string)
	if url == "" {
		return fmt.Errorf("missing url")
	}
	timeout := 5 * time.Second
	switch v := params["timeout"].(type) {
	case int:
		timeout = time.Duration(v) * time.Second
	case float64:
		timeout = time.Duration(v * float64(time.Second))
	}
	ua, _ := params["user_agent"].(string)

	start := time.Now()
	session := t.newSession(ingest.HTTPOptions{UserAgent: ua, Timeout: timeout})
	body, err := session.Fetch(ctx, url)
	if err != nil {
		logger.Warn("[Ping] feed unreachable", zap.String("url", url), zap.Error(err))
		return err
	}

	logger.Info("[Ping] success",
		zap.String("url", url),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
