package weight_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iceymoss/weibo-trend/internal/testkit"
	"github.com/iceymoss/weibo-trend/internal/weight"
	"github.com/iceymoss/weibo-trend/pkg/db/objects"
)

func sum(w objects.Weight) float64 {
	return w.PostCountWeight + w.AvgLikesWeight + w.AvgCommentsWeight + w.AvgRepostsWeight
}

func corpus() []objects.Topic {
	return []objects.Topic{
		{PostCount: 3, AvgLikes: 120, AvgComments: 10, AvgReposts: 4},
		{PostCount: 10, AvgLikes: 800, AvgComments: 55, AvgReposts: 20},
		{PostCount: 1, AvgLikes: 5, AvgComments: 0, AvgReposts: 1},
		{PostCount: 6, AvgLikes: 300, AvgComments: 30, AvgReposts: 9},
	}
}

func TestLearn_Normalized(t *testing.T) {
	w, ok := weight.Learn(corpus())
	require.True(t, ok)
	assert.InDelta(t, 1.0, sum(w), 1e-6)
	for _, v := range []float64{w.PostCountWeight, w.AvgLikesWeight, w.AvgCommentsWeight, w.AvgRepostsWeight} {
		assert.GreaterOrEqual(t, v, 0.0)
	}
	// 点赞的方差远大于其他指标
	assert.Greater(t, w.AvgLikesWeight, w.PostCountWeight)
	assert.Equal(t, objects.WeightID, w.ID)
}

func TestLearn_Degenerate(t *testing.T) {
	tests := []struct {
		name   string
		topics []objects.Topic
	}{
		{"empty", nil},
		{"single", []objects.Topic{{PostCount: 3, AvgLikes: 2}}},
		{"constant", []objects.Topic{{PostCount: 3, AvgLikes: 2}, {PostCount: 3, AvgLikes: 2}, {PostCount: 3, AvgLikes: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, ok := weight.Learn(tt.topics)
			assert.False(t, ok)
			assert.Equal(t, objects.UniformWeight(), w)
			assert.InDelta(t, 1.0, sum(w), 1e-9)
		})
	}
}

func TestLearner_CachesFirstResult(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore(t, "live")
	for i, topic := range corpus() {
		topic.UUID = string(rune('a' + i))
		topic.PostRefs = []int64{}
		require.NoError(t, store.Topics.Create(ctx, &topic))
	}

	l := weight.NewLearner(store)
	first, err := l.Load(ctx)
	require.NoError(t, err)

	// 新话题不会触发重新计算
	require.NoError(t, store.Topics.Create(ctx, &objects.Topic{UUID: "z", PostCount: 1000, AvgLikes: 1, PostRefs: []int64{}}))
	second, err := l.Load(ctx)
	require.NoError(t, err)
	assert.InDelta(t, first.PostCountWeight, second.PostCountWeight, 1e-12)
	assert.InDelta(t, first.AvgLikesWeight, second.AvgLikesWeight, 1e-12)

	// 显式失效后重新学习
	require.NoError(t, store.Weights.Invalidate(ctx))
	third, err := l.Load(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.PostCountWeight, third.PostCountWeight)
}

func TestLearner_EmptyStoreFallsBack(t *testing.T) {
	store := testkit.NewStore(t, "live")
	w, err := weight.NewLearner(store).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.25, w.PostCountWeight)
}
