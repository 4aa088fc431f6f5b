// Package aggregate 根据成员博文重新计算话题的计数、均值、词频与情感。
package aggregate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iceymoss/weibo-trend/internal/repo"
	"github.com/iceymoss/weibo-trend/pkg/db/objects"
	"github.com/iceymoss/weibo-trend/pkg/logger"
)

// Apply 用 posts 覆盖话题的派生字段
// post_refs 只保留实际存在的博文并去重，post_count 与之保持一致
func Apply(t *objects.Topic, posts []objects.Post) {
	byID := make(map[int64]*objects.Post, len(posts))
	for i := range posts {
		byID[posts[i].ID] = &posts[i]
	}

	refs := make([]int64, 0, len(t.PostRefs))
	members := make([]*objects.Post, 0, len(t.PostRefs))
	for _, id := range objects.UniqueIDs(t.PostRefs) {
		if p, ok := byID[id]; ok {
			refs = append(refs, id)
			members = append(members, p)
		}
	}
	t.PostRefs = refs
	t.PostCount = len(refs)

	t.AvgLikes, t.AvgComments, t.AvgReposts = 0, 0, 0
	t.PostKeywordFreq = make(map[string]int)
	t.Emotion = make(map[string]float64)
	if len(members) == 0 {
		return
	}

	var likes, comments, reposts int
	emotionSum := make(map[string]float64)
	emotionN := make(map[string]int)
	for _, p := range members {
		likes += p.Likes
		comments += p.Comments
		reposts += p.Reposts
		for _, kw := range p.Keywords {
			t.PostKeywordFreq[kw]++
		}
		for category, v := range p.Emotion {
			emotionSum[category] += v
			emotionN[category]++
		}
	}
	n := float64(len(members))
	t.AvgLikes = float64(likes) / n
	t.AvgComments = float64(comments) / n
	t.AvgReposts = float64(reposts) / n
	for category, sum := range emotionSum {
		t.Emotion[category] = sum / float64(emotionN[category])
	}
}

// Recompute 对 store 中所有话题执行 Apply 并逐个保存
func Recompute(ctx context.Context, store *repo.Store) (int, error) {
	topics, err := store.Topics.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("load topics: %w", err)
	}
	for i := range topics {
		t := &topics[i]
		posts, err := store.Posts.FindByIDs(ctx, objects.UniqueIDs(t.PostRefs))
		if err != nil {
			return i, fmt.Errorf("load posts of %s: %w", t.UUID, err)
		}
		Apply(t, posts)
		if err := store.Topics.Save(ctx, t); err != nil {
			return i, fmt.Errorf("save topic %s: %w", t.UUID, err)
		}
	}
	logger.Named("aggregate").Info("aggregates recomputed",
		zap.String("store", store.Name), zap.Int("topics", len(topics)))
	return len(topics), nil
}
