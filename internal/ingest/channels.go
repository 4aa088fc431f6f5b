package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/iceymoss/weibo-trend/internal/repo"
	"github.com/iceymoss/weibo-trend/pkg/db/objects"
)

// 只保留这两个分组下的频道
var channelGroups = map[string]bool{
	"我的频道": true,
	"频道推荐": true,
}

type groupsPayload struct {
	Groups []struct {
		Title string `json:"title"`
		Group []struct {
			Title       string     `json:"title"`
			GID         flexString `json:"gid"`
			ContainerID flexString `json:"containerid"`
		} `json:"group"`
	} `json:"groups"`
}

// ParseChannels 解析 allGroups 响应
func ParseChannels(body []byte) ([]objects.Channel, error) {
	var p groupsPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}
	var list []objects.Channel
	for _, g := range p.Groups {
		if !channelGroups[g.Title] {
			continue
		}
		for _, ch := range g.Group {
			if ch.GID == "" {
				continue
			}
			list = append(list, objects.Channel{
				GID:         string(ch.GID),
				Title:       ch.Title,
				ContainerID: string(ch.ContainerID),
			})
		}
	}
	return list, nil
}

// SyncChannels 拉取频道列表并写入 store
func SyncChannels(ctx context.Context, store *repo.Store, session Session, groupsURL string) (int, error) {
	body, err := session.Fetch(ctx, groupsURL)
	if err != nil {
		return 0, fmt.Errorf("fetch channels: %w", err)
	}
	list, err := ParseChannels(body)
	if err != nil {
		return 0, err
	}
	for i := range list {
		if err := store.Channels.Upsert(ctx, &list[i]); err != nil {
			return 0, fmt.Errorf("save channel %s: %w", list[i].GID, err)
		}
	}
	return len(list), nil
}

// BuildURLs 每个 refresh 轮次 × 每个频道生成一个 hottimeline 地址
func BuildURLs(baseURL string, channels []objects.Channel, rounds int) []string {
	urls := make([]string, 0, rounds*len(channels))
	for r := 0; r < rounds; r++ {
		for _, ch := range channels {
			q := url.Values{}
			q.Set("since_id", "0")
			q.Set("refresh", strconv.Itoa(r))
			q.Set("group_id", ch.GID)
			q.Set("containerid", ch.ContainerID)
			q.Set("extparam", "discover|new_feed")
			q.Set("max_id", "0")
			q.Set("count", "10")
			urls = append(urls, baseURL+"/ajax/feed/hottimeline?"+q.Encode())
		}
	}
	return urls
}
