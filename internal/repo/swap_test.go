package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iceymoss/weibo-trend/internal/testkit"
	"github.com/iceymoss/weibo-trend/pkg/db/objects"
)

func TestCopyFrom_ReplacesEverything(t *testing.T) {
	ctx := context.Background()
	live := testkit.NewStore(t, "live")
	staging := testkit.NewStore(t, "staging")

	for _, u := range []string{"old1", "old2", "old3"} {
		testkit.SeedTopic(t, live, objects.Topic{UUID: u, PostRefs: []int64{}})
	}
	testkit.SeedPost(t, live, objects.Post{ID: 100})
	require.NoError(t, live.Channels.Upsert(ctx, &objects.Channel{GID: "old"}))
	require.NoError(t, live.Runs.Start(ctx, &objects.PipelineRun{RunID: "keep", StartTime: testkit.Now}))

	for _, u := range []string{"n1", "n2", "n3", "n4", "n5"} {
		testkit.SeedTopic(t, staging, objects.Topic{UUID: u, Title: "title " + u, PostRefs: []int64{1}})
	}
	testkit.SeedPost(t, staging, objects.Post{ID: 1, TopicRefs: []string{"n1"}, Emotion: map[string]float64{"乐": 1}})
	require.NoError(t, staging.Weights.Save(ctx, objects.UniformWeight()))
	require.NoError(t, staging.Channels.Upsert(ctx, &objects.Channel{GID: "g1", ContainerID: "c1"}))

	require.NoError(t, live.CopyFrom(ctx, staging))

	topics, err := live.Topics.All(ctx)
	require.NoError(t, err)
	var got []string
	for _, tp := range topics {
		got = append(got, tp.UUID)
	}
	assert.Equal(t, []string{"n1", "n2", "n3", "n4", "n5"}, got)
	assert.Equal(t, "title n3", topics[2].Title)

	posts, err := live.Posts.All(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, int64(1), posts[0].ID)
	assert.Equal(t, map[string]float64{"乐": 1}, posts[0].Emotion)

	channels, err := live.Channels.All(ctx)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "g1", channels[0].GID)

	_, found, err := live.Weights.Get(ctx)
	require.NoError(t, err)
	assert.True(t, found)

	// 执行日志不参与切换
	runs, err := live.Runs.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	// 源库不受影响
	n, err := staging.Topics.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestCopyFrom_EmptySource(t *testing.T) {
	ctx := context.Background()
	live := testkit.NewStore(t, "live")
	staging := testkit.NewStore(t, "staging")
	testkit.SeedTopic(t, live, objects.Topic{UUID: "old", PostRefs: []int64{}})

	require.NoError(t, live.CopyFrom(ctx, staging))
	n, err := live.Topics.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
