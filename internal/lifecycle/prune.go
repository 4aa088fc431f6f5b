package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/iceymoss/weibo-trend/internal/repo"
)

// PruneResult 一次清理的结果
type PruneResult struct {
	Posts         int
	TopicsDeleted int
}

// Prune 删除发布时间早于 cutoff 的博文，并从所属话题中摘除
// 话题 post_count 减到 0 时一并删除；每条博文一个事务
func Prune(ctx context.Context, store *repo.Store, cutoff time.Time) (PruneResult, error) {
	var res PruneResult
	posts, err := store.Posts.OlderThan(ctx, cutoff)
	if err != nil {
		return res, fmt.Errorf("load expired posts: %w", err)
	}
	for i := range posts {
		post := &posts[i]
		deleted := 0
		err := store.Tx.Execute(ctx, nil, func(ctx context.Context) error {
			deleted = 0
			for _, uuid := range post.TopicRefs {
				gone, err := detach(ctx, store, uuid, post.ID)
				if err != nil {
					return err
				}
				if gone {
					deleted++
				}
			}
			return store.Posts.Delete(ctx, post.ID)
		})
		if err != nil {
			return res, fmt.Errorf("prune post %d: %w", post.ID, err)
		}
		res.Posts++
		res.TopicsDeleted += deleted
	}
	return res, nil
}

// detach 从话题中摘除博文，返回话题是否因此被删除
func detach(ctx context.Context, store *repo.Store, uuid string, postID int64) (bool, error) {
	topic, err := store.Topics.Get(ctx, uuid)
	if repo.IsNotFound(err) {
		// 悬空引用，忽略
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if topic.RemovePost(postID) {
		topic.PostCount--
	}
	if topic.PostCount <= 0 {
		return true, store.Topics.Delete(ctx, uuid)
	}
	return false, store.Topics.Save(ctx, topic)
}
