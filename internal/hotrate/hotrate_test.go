package hotrate_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iceymoss/weibo-trend/internal/hotrate"
	"github.com/iceymoss/weibo-trend/internal/testkit"
	"github.com/iceymoss/weibo-trend/pkg/db/objects"
)

var w = objects.Weight{PostCountWeight: 0.4, AvgLikesWeight: 0.3, AvgCommentsWeight: 0.2, AvgRepostsWeight: 0.1}

func TestScore_Truncates(t *testing.T) {
	// 0.4*3 + 0.3*10 + 0.2*1 + 0.1*5 = 4.9
	assert.Equal(t, 4, hotrate.Score(3, 10, 1, 5, w))
	assert.Equal(t, 0, hotrate.Score(0, 0, 0, 0, w))
}

func TestScore_MonotoneInPostCount(t *testing.T) {
	for a := 0; a < 50; a++ {
		for b := 0; b < a; b++ {
			assert.GreaterOrEqual(t, hotrate.Score(a, 12.5, 3, 1, w), hotrate.Score(b, 12.5, 3, 1, w))
		}
	}
}

func TestSeries_Buckets(t *testing.T) {
	now := testkit.Now
	posts := []objects.Post{
		{ID: 1, CreatedAt: now.Add(-time.Minute), Likes: 10},
		{ID: 2, CreatedAt: now.Add(-3 * time.Hour), Likes: 30},  // 恰在边界，属于第 0 桶
		{ID: 3, CreatedAt: now.Add(-4 * time.Hour), Likes: 100}, // 第 1 桶
		{ID: 4, CreatedAt: now.Add(-71 * time.Hour), Likes: 7},  // 第 23 桶
		{ID: 5, CreatedAt: now.Add(-80 * time.Hour), Likes: 9},  // 窗口外
		{ID: 6, CreatedAt: now.Add(time.Hour), Likes: 9},        // 未来
	}
	series := hotrate.Series(posts, now, w)
	require.Len(t, series, hotrate.Buckets)

	// 桶 0：2 条，均赞 20 → 0.8 + 6 = 6.8
	assert.Equal(t, 6, series[0])
	// 桶 1：1 条，赞 100 → 0.4 + 30
	assert.Equal(t, 30, series[1])
	// 桶 23：0.4 + 2.1 = 2.5
	assert.Equal(t, 2, series[23])
	for i := 2; i < 23; i++ {
		assert.Zero(t, series[i], "bucket %d", i)
	}
}

func TestCalculator(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore(t, "staging")
	testkit.SeedTopic(t, store, objects.Topic{UUID: "hot", PostRefs: []int64{1}, AvgLikes: 100})
	testkit.SeedTopic(t, store, objects.Topic{UUID: "empty", PostRefs: []int64{}})
	testkit.SeedPost(t, store, objects.Post{ID: 1, CreatedAt: testkit.Now.Add(-time.Hour), Likes: 100})

	c := hotrate.NewCalculator(store, testkit.Clock(testkit.Now))
	require.NoError(t, c.UpdateScores(ctx, w))
	require.NoError(t, c.UpdateSeries(ctx, w))

	hot := testkit.MustTopic(t, store, "hot")
	assert.Equal(t, 30, hot.HotRate)
	require.Len(t, hot.HotRateSeries, hotrate.Buckets)
	assert.Equal(t, 30, hot.HotRateSeries[0])

	empty := testkit.MustTopic(t, store, "empty")
	assert.Zero(t, empty.HotRate)
	assert.Empty(t, empty.HotRateSeries)
}
