package dedup

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iceymoss/weibo-trend/internal/repo"
	"github.com/iceymoss/weibo-trend/pkg/db/objects"
	"github.com/iceymoss/weibo-trend/pkg/logger"
)

const (
	DefaultThreshold = 0.5
	DefaultBatchSize = 500
)

// Merger 分页扫描话题，合并标题关键词相似度超过阈值的话题对
type Merger struct {
	store     *repo.Store
	threshold float64
	batchSize int
	log       *zap.Logger
}

func NewMerger(store *repo.Store, threshold float64, batchSize int) *Merger {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Merger{
		store:     store,
		threshold: threshold,
		batchSize: batchSize,
		log:       logger.Named("dedup").With(zap.String("store", store.Name)),
	}
}

// Run 按 uuid 游标逐页合并，返回合并次数
// 一页反复扫描直到不再产生合并才前进，不回头与之前的页比较
func (m *Merger) Run(ctx context.Context) (int, error) {
	total, cursor := 0, ""
	for {
		page, err := m.store.Topics.PageAfter(ctx, cursor, m.batchSize)
		if err != nil {
			return total, fmt.Errorf("load topics after %q: %w", cursor, err)
		}
		if len(page) == 0 {
			break
		}
		for {
			n, err := m.pass(ctx, page)
			if err != nil {
				return total, err
			}
			total += n
			if n == 0 {
				break
			}
			// 重新读取本页：被删除的话题消失，空位由后面的话题补上
			page, err = m.store.Topics.PageAfter(ctx, cursor, m.batchSize)
			if err != nil {
				return total, fmt.Errorf("reload topics after %q: %w", cursor, err)
			}
		}

		if len(page) < m.batchSize {
			break
		}
		cursor = page[len(page)-1].UUID
	}
	m.log.Info("merge finished", zap.Int("merged", total))
	return total, nil
}

// pass 对一页做一次两两比较
// 被并入的话题从本次 pass 中移除；存活者不再作为被并入的一方，但可以继续吸收后面的话题
func (m *Merger) pass(ctx context.Context, page []objects.Topic) (int, error) {
	deleted := make(map[string]bool)
	survived := make(map[string]bool)
	count := 0
	for i := range page {
		a := &page[i]
		if deleted[a.UUID] {
			continue
		}
		for j := i + 1; j < len(page); j++ {
			b := &page[j]
			if deleted[b.UUID] {
				continue
			}
			if Similarity(a.Keywords, b.Keywords) <= m.threshold {
				continue
			}

			survivor, loser := a, b
			if b.PostCount > a.PostCount {
				survivor, loser = b, a
			}
			if survived[loser.UUID] {
				continue
			}
			if err := m.Merge(ctx, survivor, loser); err != nil {
				return count, fmt.Errorf("merge %s into %s: %w", loser.UUID, survivor.UUID, err)
			}
			survived[survivor.UUID] = true
			deleted[loser.UUID] = true
			count++

			if loser == a {
				// a 已被删除，不再作为外层话题
				break
			}
		}
	}
	return count, nil
}

// Merge 在一个事务中把 loser 并入 survivor：合并 post_refs、改写博文引用、删除 loser
func (m *Merger) Merge(ctx context.Context, survivor, loser *objects.Topic) error {
	err := m.store.Tx.Execute(ctx, nil, func(ctx context.Context) error {
		posts, err := m.store.Posts.ReferencingTopic(ctx, loser.UUID)
		if err != nil {
			return err
		}
		for i := range posts {
			posts[i].ReplaceTopic(loser.UUID, survivor.UUID)
			if err := m.store.Posts.Save(ctx, &posts[i]); err != nil {
				return err
			}
		}

		survivor.Absorb(loser)
		if err := m.store.Topics.Save(ctx, survivor); err != nil {
			return err
		}
		return m.store.Topics.Delete(ctx, loser.UUID)
	})
	if err != nil {
		return err
	}
	m.log.Debug("topic merged",
		zap.String("survivor", survivor.UUID),
		zap.String("loser", loser.UUID),
		zap.Int("post_count", survivor.PostCount),
	)
	return nil
}
