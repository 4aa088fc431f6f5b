package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iceymoss/weibo-trend/internal/lifecycle"
	"github.com/iceymoss/weibo-trend/internal/repo"
	"github.com/iceymoss/weibo-trend/internal/testkit"
	"github.com/iceymoss/weibo-trend/pkg/db/objects"
	"github.com/iceymoss/weibo-trend/pkg/utils"
)

func TestPrune_Cascades(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore(t, "staging")
	now := testkit.Now
	testkit.SeedTopic(t, store, objects.Topic{UUID: "mixed", PostRefs: []int64{1, 2}})
	testkit.SeedTopic(t, store, objects.Topic{UUID: "expired", PostRefs: []int64{3}})
	testkit.SeedPost(t, store, objects.Post{ID: 1, CreatedAt: now.Add(-73 * time.Hour), TopicRefs: []string{"mixed"}})
	testkit.SeedPost(t, store, objects.Post{ID: 2, CreatedAt: now.Add(-time.Hour), TopicRefs: []string{"mixed"}})
	testkit.SeedPost(t, store, objects.Post{ID: 3, CreatedAt: now.Add(-100 * time.Hour), TopicRefs: []string{"expired", "gone"}})

	res, err := lifecycle.Prune(ctx, store, now.Add(-72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, lifecycle.PruneResult{Posts: 2, TopicsDeleted: 1}, res)

	for _, id := range []int64{1, 3} {
		exists, err := store.Posts.Exists(ctx, id)
		require.NoError(t, err)
		assert.False(t, exists, "post %d", id)
	}
	mixed := testkit.MustTopic(t, store, "mixed")
	assert.Equal(t, 1, mixed.PostCount)
	assert.Equal(t, []int64{2}, mixed.PostRefs)

	_, err = store.Topics.Get(ctx, "expired")
	assert.True(t, repo.IsNotFound(err))
}

func TestPrune_NothingExpired(t *testing.T) {
	store := testkit.NewStore(t, "staging")
	testkit.SeedPost(t, store, objects.Post{ID: 1, CreatedAt: testkit.Now})

	res, err := lifecycle.Prune(context.Background(), store, testkit.Now.Add(-72*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, res.Posts)
}

func TestPrune_MixedTimeZones(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore(t, "staging")
	// 接口时间按东八区解析，清理截止时间按 UTC 给出
	testkit.SeedPost(t, store, objects.Post{ID: 1, CreatedAt: testkit.Now.Add(-75 * time.Hour).In(utils.ChinaLocation)})
	testkit.SeedPost(t, store, objects.Post{ID: 2, CreatedAt: testkit.Now.Add(-69 * time.Hour).In(utils.ChinaLocation)})

	res, err := lifecycle.Prune(ctx, store, testkit.Now.Add(-72*time.Hour).UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Posts)

	exists, err := store.Posts.Exists(ctx, 1)
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = store.Posts.Exists(ctx, 2)
	require.NoError(t, err)
	assert.True(t, exists)

	// 东八区的截止时间也一样
	testkit.SeedPost(t, store, objects.Post{ID: 3, CreatedAt: testkit.Now.Add(-73 * time.Hour)})
	res, err = lifecycle.Prune(ctx, store, testkit.Now.Add(-72*time.Hour).In(utils.ChinaLocation))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Posts)
}
