package dedup_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iceymoss/weibo-trend/internal/dedup"
	"github.com/iceymoss/weibo-trend/internal/ingest"
	"github.com/iceymoss/weibo-trend/internal/repo"
	"github.com/iceymoss/weibo-trend/internal/testkit"
	"github.com/iceymoss/weibo-trend/pkg/db/objects"
	"github.com/iceymoss/weibo-trend/pkg/textkit"
)

func TestMerger_EndToEnd(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore(t, "staging")
	at := testkit.Now.Add(-time.Hour)
	feed := testkit.NewFakeFeed().Serve("u1", testkit.FeedJSON(
		testkit.FeedPost{ID: 1, Text: "one", Created: at, Topics: map[string]string{"t1": "Topic A Big News Today"}},
		testkit.FeedPost{ID: 2, Text: "two", Created: at, Topics: map[string]string{"t1": "Topic A Big News Today"}},
		testkit.FeedPost{ID: 3, Text: "three", Created: at, Topics: map[string]string{"t2": "Topic A Big News Tonight"}},
	))
	c := ingest.NewCoordinator(store, func() ingest.Session { return feed }, textkit.Fields{}, textkit.Fields{},
		func([]string) (map[string]float64, error) { return nil, nil },
		ingest.Options{FirstWaveRequests: 1}, ingest.WithClock(testkit.Clock(testkit.Now)))
	_, err := c.Run(ctx, []string{"u1"})
	require.NoError(t, err)
	assert.Equal(t, 2, testkit.MustTopic(t, store, "t1").PostCount)

	n, err := dedup.NewMerger(store, 0, 0).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	t1 := testkit.MustTopic(t, store, "t1")
	assert.Equal(t, 3, t1.PostCount)
	assert.ElementsMatch(t, []int64{1, 2, 3}, t1.PostRefs)

	_, err = store.Topics.Get(ctx, "t2")
	assert.True(t, repo.IsNotFound(err))
	assert.Equal(t, []string{"t1"}, testkit.MustPost(t, store, 3).TopicRefs)

	left, err := store.Posts.ReferencingTopic(ctx, "t2")
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestMerger_PreservesPostCoverage(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore(t, "staging")
	testkit.SeedTopic(t, store, objects.Topic{UUID: "a", Keywords: []string{"x", "y"}, PostRefs: []int64{1, 2}})
	testkit.SeedTopic(t, store, objects.Topic{UUID: "b", Keywords: []string{"x", "y"}, PostRefs: []int64{2, 3, 4}})
	testkit.SeedPost(t, store, objects.Post{ID: 1, TopicRefs: []string{"a"}})
	testkit.SeedPost(t, store, objects.Post{ID: 2, TopicRefs: []string{"a", "b"}})
	testkit.SeedPost(t, store, objects.Post{ID: 3, TopicRefs: []string{"b"}})
	testkit.SeedPost(t, store, objects.Post{ID: 4, TopicRefs: []string{"b", "other"}})

	_, err := dedup.NewMerger(store, 0, 0).Run(ctx)
	require.NoError(t, err)

	// b 的博文更多，a 被并入 b
	b := testkit.MustTopic(t, store, "b")
	assert.ElementsMatch(t, []int64{1, 2, 3, 4}, b.PostRefs)
	assert.Equal(t, 4, b.PostCount)
	_, err = store.Topics.Get(ctx, "a")
	assert.True(t, repo.IsNotFound(err))

	assert.Equal(t, []string{"b"}, testkit.MustPost(t, store, 1).TopicRefs)
	assert.Equal(t, []string{"b"}, testkit.MustPost(t, store, 2).TopicRefs)
	assert.ElementsMatch(t, []string{"b", "other"}, testkit.MustPost(t, store, 4).TopicRefs)
}

func TestMerger_TieKeepsFirst(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore(t, "staging")
	testkit.SeedTopic(t, store, objects.Topic{UUID: "a", Keywords: []string{"x"}, PostRefs: []int64{1}})
	testkit.SeedTopic(t, store, objects.Topic{UUID: "b", Keywords: []string{"x"}, PostRefs: []int64{2}})

	_, err := dedup.NewMerger(store, 0, 0).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, testkit.MustTopic(t, store, "a").PostCount)
	_, err = store.Topics.Get(ctx, "b")
	assert.True(t, repo.IsNotFound(err))
}

func TestMerger_BelowThresholdUntouched(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore(t, "staging")
	// 相似度恰为 0.5，不合并
	testkit.SeedTopic(t, store, objects.Topic{UUID: "a", Keywords: []string{"x", "y"}, PostRefs: []int64{1}})
	testkit.SeedTopic(t, store, objects.Topic{UUID: "b", Keywords: []string{"x", "z"}, PostRefs: []int64{2}})
	testkit.SeedTopic(t, store, objects.Topic{UUID: "c", Keywords: []string{}, PostRefs: []int64{3}})
	testkit.SeedTopic(t, store, objects.Topic{UUID: "d", Keywords: []string{}, PostRefs: []int64{4}})

	n, err := dedup.NewMerger(store, 0, 0).Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := store.Topics.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestMerger_RepassesPageUntilStable(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore(t, "staging")
	for i, uuid := range []string{"a", "b", "c", "d"} {
		testkit.SeedTopic(t, store, objects.Topic{UUID: uuid, Keywords: []string{"same"}, PostRefs: []int64{int64(i + 1)}})
	}

	n, err := dedup.NewMerger(store, 0, 0).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err := store.Topics.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 4, all[0].PostCount)
}

func TestMerger_DoesNotLookBackAcrossPages(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore(t, "staging")
	testkit.SeedTopic(t, store, objects.Topic{UUID: "a", Keywords: []string{"same"}, PostRefs: []int64{1}})
	testkit.SeedTopic(t, store, objects.Topic{UUID: "b", Keywords: []string{"other"}, PostRefs: []int64{2}})
	testkit.SeedTopic(t, store, objects.Topic{UUID: "c", Keywords: []string{"same"}, PostRefs: []int64{3}})

	n, err := dedup.NewMerger(store, 0, 2).Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := store.Topics.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
