package network

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iceymoss/weibo-trend/internal/ingest"
	"github.com/iceymoss/weibo-trend/internal/tasks"
	"github.com/iceymoss/weibo-trend/internal/testkit"
)

func TestPingTask(t *testing.T) {
	feed := testkit.NewFakeFeed().Serve("https://weibo.example", []byte("ok")).
		Fail("https://down.example", errors.New("dial tcp: refused"))
	var got ingest.HTTPOptions
	task := &PingTask{newSession: func(opts ingest.HTTPOptions) ingest.Session {
		got = opts
		return feed
	}}

	assert.NoError(t, task.Run(context.Background(), map[string]any{"url": "https://weibo.example", "timeout": 2}))
	assert.Equal(t, 2e9, float64(got.Timeout))
	assert.Error(t, task.Run(context.Background(), map[string]any{"url": "https://down.example"}))
	assert.EqualError(t, task.Run(context.Background(), map[string]any{}), "missing url")
}

func TestPingTask_Registered(t *testing.T) {
	task, err := tasks.GetTask(TaskFeedPing)
	assert.NoError(t, err)
	assert.Equal(t, TaskFeedPing, task.Identifier())
}
