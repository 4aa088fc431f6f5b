package dedup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iceymoss/weibo-trend/internal/repo"
	"github.com/iceymoss/weibo-trend/internal/testkit"
	"github.com/iceymoss/weibo-trend/pkg/db/objects"
)

func seedPage(t *testing.T, store *repo.Store, topics ...objects.Topic) []objects.Topic {
	t.Helper()
	for _, topic := range topics {
		testkit.SeedTopic(t, store, topic)
	}
	page, err := store.Topics.PageAfter(context.Background(), "", DefaultBatchSize)
	require.NoError(t, err)
	return page
}

func TestPass_InnerSurvivorKeepsAbsorbing(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore(t, "staging")
	page := seedPage(t, store,
		objects.Topic{UUID: "a", Keywords: []string{"same"}, PostRefs: []int64{1}},
		objects.Topic{UUID: "b", Keywords: []string{"same"}, PostRefs: []int64{2, 3, 4}},
		objects.Topic{UUID: "c", Keywords: []string{"same"}, PostRefs: []int64{5}},
	)

	// b 吞并 a 之后，同一次 pass 内继续吞并 c
	n, err := NewMerger(store, 0, 0).pass(ctx, page)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	b := testkit.MustTopic(t, store, "b")
	assert.ElementsMatch(t, []int64{1, 2, 3, 4, 5}, b.PostRefs)
	assert.Equal(t, 5, b.PostCount)
	count, err := store.Topics.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPass_SurvivorIsNotMergedAgain(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore(t, "staging")
	page := seedPage(t, store,
		objects.Topic{UUID: "a", Keywords: []string{"same"}, PostRefs: []int64{1, 2}},
		objects.Topic{UUID: "b", Keywords: []string{"same"}, PostRefs: []int64{3}},
		objects.Topic{UUID: "c", Keywords: []string{"same"}, PostRefs: []int64{4, 5, 6, 7}},
	)

	// a 吞并 b 后成为存活者，本次 pass 不会再被 c 吞并
	n, err := NewMerger(store, 0, 0).pass(ctx, page)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, testkit.MustTopic(t, store, "a").PostCount)
	assert.Equal(t, 4, testkit.MustTopic(t, store, "c").PostCount)

	// 下一轮由 Run 重扫本页完成
	total, err := NewMerger(store, 0, 0).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 7, testkit.MustTopic(t, store, "c").PostCount)
}
