package ingest_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iceymoss/weibo-trend/internal/ingest"
	"github.com/iceymoss/weibo-trend/internal/testkit"
	"github.com/iceymoss/weibo-trend/pkg/db/objects"
)

const groupsBody = `{"groups":[
 {"title":"我的频道","group":[{"title":"热门","gid":"102803","containerid":"102803"}]},
 {"title":"频道推荐","group":[{"title":"社会","gid":4188633986790962,"containerid":"102803_ctg1_4188"}]},
 {"title":"其他","group":[{"title":"广告","gid":"1","containerid":"1"}]}]}`

func TestParseChannels(t *testing.T) {
	list, err := ingest.ParseChannels([]byte(groupsBody))
	require.NoError(t, err)
	assert.Equal(t, []objects.Channel{
		{GID: "102803", Title: "热门", ContainerID: "102803"},
		{GID: "4188633986790962", Title: "社会", ContainerID: "102803_ctg1_4188"},
	}, list)
}

func TestSyncChannels(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore(t, "live")
	feed := testkit.NewFakeFeed().Serve("groups", []byte(groupsBody))

	n, err := ingest.SyncChannels(ctx, store, feed, "groups")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// 重复同步不产生重复记录
	_, err = ingest.SyncChannels(ctx, store, feed, "groups")
	require.NoError(t, err)
	all, err := store.Channels.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestBuildURLs(t *testing.T) {
	channels := []objects.Channel{{GID: "g1", ContainerID: "c1"}, {GID: "g2", ContainerID: "c2"}}
	urls := ingest.BuildURLs("https://weibo.com", channels, 3)
	require.Len(t, urls, 6)

	u, err := url.Parse(urls[3])
	require.NoError(t, err)
	assert.Equal(t, "/ajax/feed/hottimeline", u.Path)
	q := u.Query()
	assert.Equal(t, "1", q.Get("refresh"))
	assert.Equal(t, "g2", q.Get("group_id"))
	assert.Equal(t, "c2", q.Get("containerid"))
	assert.Equal(t, "discover|new_feed", q.Get("extparam"))
	assert.Equal(t, "10", q.Get("count"))
}
