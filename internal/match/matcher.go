package match

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/iceymoss/weibo-trend/internal/repo"
	"github.com/iceymoss/weibo-trend/pkg/db/objects"
	"github.com/iceymoss/weibo-trend/pkg/logger"
)

const (
	DefaultTopK      = 5
	DefaultThreshold = 0.5
)

type Matcher struct {
	store     *repo.Store
	topK      int
	threshold float64
	log       *zap.Logger
}

func NewMatcher(store *repo.Store, topK int, threshold float64) *Matcher {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{
		store:     store,
		topK:      topK,
		threshold: threshold,
		log:       logger.Named("match").With(zap.String("store", store.Name)),
	}
}

// Document 话题在向量空间中的文档：标题关键词 + 博文关键词词频的键
func Document(t *objects.Topic) string {
	words := make([]string, 0, len(t.Keywords)+len(t.PostKeywordFreq))
	words = append(words, t.Keywords...)
	keys := make([]string, 0, len(t.PostKeywordFreq))
	for k := range t.PostKeywordFreq {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	words = append(words, keys...)
	return strings.Join(words, " ")
}

// Corroborated 话题的某个标题关键词是否以子串形式出现在博文关键词中
func Corroborated(topic *objects.Topic, postKeywords string) bool {
	for _, kw := range topic.Keywords {
		if kw != "" && strings.Contains(postKeywords, kw) {
			return true
		}
	}
	return false
}

// Run 为所有无话题的博文寻找话题，返回新建立的关联数
func (m *Matcher) Run(ctx context.Context) (int, error) {
	topics, err := m.store.Topics.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("load topics: %w", err)
	}
	posts, err := m.store.Posts.Unowned(ctx)
	if err != nil {
		return 0, fmt.Errorf("load unowned posts: %w", err)
	}
	if len(topics) == 0 || len(posts) == 0 {
		return 0, nil
	}

	docs := make([]string, len(topics))
	for i := range topics {
		docs[i] = Document(&topics[i])
	}
	space := Fit(docs)
	vectors := make([]Vector, len(topics))
	for i, doc := range docs {
		vectors[i] = space.Transform(doc)
	}

	linked := 0
	for i := range posts {
		post := &posts[i]
		if len(post.Keywords) == 0 {
			continue
		}
		joined := strings.Join(post.Keywords, " ")
		for _, cand := range TopK(space.Transform(joined), vectors, m.topK) {
			if cand.Similarity <= m.threshold {
				break
			}
			topic := &topics[cand.Index]
			if !Corroborated(topic, joined) || post.HasTopic(topic.UUID) {
				continue
			}
			if err := m.link(ctx, post, topic); err != nil {
				return linked, fmt.Errorf("link post %d to %s: %w", post.ID, topic.UUID, err)
			}
			linked++
		}
	}
	m.log.Info("match finished", zap.Int("posts", len(posts)), zap.Int("linked", linked))
	return linked, nil
}

// link 在一个事务里双向建立关联
func (m *Matcher) link(ctx context.Context, post *objects.Post, topic *objects.Topic) error {
	return m.store.Tx.Execute(ctx, nil, func(ctx context.Context) error {
		fresh, err := m.store.Topics.Get(ctx, topic.UUID)
		if err != nil {
			return err
		}
		if fresh.AddPost(post.ID) {
			fresh.PostCount++
		}
		if err := m.store.Topics.Save(ctx, fresh); err != nil {
			return err
		}
		if !post.HasTopic(topic.UUID) {
			post.TopicRefs = append(post.TopicRefs, topic.UUID)
		}
		if err := m.store.Posts.Save(ctx, post); err != nil {
			return err
		}
		topic.PostRefs, topic.PostCount = fresh.PostRefs, fresh.PostCount
		return nil
	})
}
