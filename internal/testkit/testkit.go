// Package testkit 测试用的临时库与固定时钟。
package testkit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iceymoss/weibo-trend/internal/repo"
	"github.com/iceymoss/weibo-trend/pkg/db"
	"github.com/iceymoss/weibo-trend/pkg/db/objects"
)

// Now 测试统一使用的“当前时间”
var Now = time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)

// Clock 返回固定时间
func Clock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// NewStore 在临时目录下创建 sqlite 库
func NewStore(t testing.TB, name string) *repo.Store {
	t.Helper()
	conn, err := db.Open(db.Config{
		Driver:   db.DriverSQLite,
		DSN:      filepath.Join(t.TempDir(), name+".db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(conn) })
	return repo.NewStore(name, conn)
}

// SeedTopic 直接写入话题
func SeedTopic(t testing.TB, s *repo.Store, topic objects.Topic) {
	t.Helper()
	if topic.PostCount == 0 {
		topic.PostCount = len(topic.PostRefs)
	}
	require.NoError(t, s.Topics.Create(context.Background(), &topic))
}

// SeedPost 直接写入博文
func SeedPost(t testing.TB, s *repo.Store, post objects.Post) {
	t.Helper()
	if post.TopicRefs == nil {
		post.TopicRefs = []string{}
	}
	if post.Keywords == nil {
		post.Keywords = []string{}
	}
	require.NoError(t, s.Posts.Create(context.Background(), &post))
}

// MustTopic 读取话题，不存在则失败
func MustTopic(t testing.TB, s *repo.Store, uuid string) *objects.Topic {
	t.Helper()
	topic, err := s.Topics.Get(context.Background(), uuid)
	require.NoError(t, err)
	return topic
}

// MustPost 读取博文，不存在则失败
func MustPost(t testing.TB, s *repo.Store, id int64) *objects.Post {
	t.Helper()
	p, err := s.Posts.Get(context.Background(), id)
	require.NoError(t, err)
	return p
}
