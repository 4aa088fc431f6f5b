// Package hotrate 计算话题热度与 72 小时热度曲线。
package hotrate

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/iceymoss/weibo-trend/internal/repo"
	"github.com/iceymoss/weibo-trend/pkg/db/objects"
	"github.com/iceymoss/weibo-trend/pkg/logger"
)

const (
	Buckets    = 24
	BucketSpan = 3 * time.Hour
)

// Score 加权求和后向零截断
func Score(count int, avgLikes, avgComments, avgReposts float64, w objects.Weight) int {
	v := float64(count)*w.PostCountWeight +
		avgLikes*w.AvgLikesWeight +
		avgComments*w.AvgCommentsWeight +
		avgReposts*w.AvgRepostsWeight
	return int(math.Trunc(v))
}

// TopicScore 话题整体热度
func TopicScore(t *objects.Topic, w objects.Weight) int {
	return Score(t.PostCount, t.AvgLikes, t.AvgComments, t.AvgReposts, w)
}

// Series 第 i 个桶覆盖 [now-(i+1)*3h, now-i*3h)，下标 0 为最近
// 桶内用博文数与桶内均值代入热度公式，空桶为 0
func Series(posts []objects.Post, now time.Time, w objects.Weight) []int {
	type acc struct{ n, likes, comments, reposts int }
	var buckets [Buckets]acc
	for _, p := range posts {
		age := now.Sub(p.CreatedAt)
		if age <= 0 {
			continue
		}
		// 左闭右开：age 恰为 (i+1)*3h 时仍属于第 i 个桶
		i := int(age / BucketSpan)
		if age%BucketSpan == 0 {
			i--
		}
		if i < 0 || i >= Buckets {
			continue
		}
		b := &buckets[i]
		b.n++
		b.likes += p.Likes
		b.comments += p.Comments
		b.reposts += p.Reposts
	}

	series := make([]int, Buckets)
	for i, b := range buckets {
		if b.n == 0 {
			continue
		}
		n := float64(b.n)
		series[i] = Score(b.n, float64(b.likes)/n, float64(b.comments)/n, float64(b.reposts)/n, w)
	}
	return series
}

// Calculator 批量更新 store 中话题的热度与曲线
type Calculator struct {
	store *repo.Store
	now   func() time.Time
	log   *zap.Logger
}

func NewCalculator(store *repo.Store, now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{store: store, now: now, log: logger.Named("hotrate").With(zap.String("store", store.Name))}
}

// UpdateScores 重新计算每个话题的 hot_rate
func (c *Calculator) UpdateScores(ctx context.Context, w objects.Weight) error {
	topics, err := c.store.Topics.All(ctx)
	if err != nil {
		return fmt.Errorf("load topics: %w", err)
	}
	for i := range topics {
		topics[i].HotRate = TopicScore(&topics[i], w)
		if err := c.store.Topics.Save(ctx, &topics[i]); err != nil {
			return fmt.Errorf("save topic %s: %w", topics[i].UUID, err)
		}
	}
	c.log.Info("hot rate updated", zap.Int("topics", len(topics)))
	return nil
}

// UpdateSeries 重新计算每个话题的热度曲线，没有成员博文的话题曲线为空
func (c *Calculator) UpdateSeries(ctx context.Context, w objects.Weight) error {
	topics, err := c.store.Topics.All(ctx)
	if err != nil {
		return fmt.Errorf("load topics: %w", err)
	}
	now := c.now()
	for i := range topics {
		t := &topics[i]
		posts, err := c.store.Posts.FindByIDs(ctx, objects.UniqueIDs(t.PostRefs))
		if err != nil {
			return fmt.Errorf("load posts of %s: %w", t.UUID, err)
		}
		if len(posts) == 0 {
			t.HotRateSeries = []int{}
		} else {
			t.HotRateSeries = Series(posts, now, w)
		}
		if err := c.store.Topics.Save(ctx, t); err != nil {
			return fmt.Errorf("save topic %s: %w", t.UUID, err)
		}
	}
	c.log.Info("hot rate series updated", zap.Int("topics", len(topics)))
	return nil
}
