// Package ingest 并发抓取微博并幂等入库。
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iceymoss/weibo-trend/internal/repo"
	"github.com/iceymoss/weibo-trend/pkg/db/objects"
	"github.com/iceymoss/weibo-trend/pkg/lexicon"
	"github.com/iceymoss/weibo-trend/pkg/logger"
	"github.com/iceymoss/weibo-trend/pkg/sensitive"
	"github.com/iceymoss/weibo-trend/pkg/textkit"
)

// Emotions 情感打分，出错只影响当前这条博文
type Emotions func(tokens []string) (map[string]float64, error)

// LexiconEmotions 用情感词典打分
func LexiconEmotions(d lexicon.Dict) Emotions {
	return func(tokens []string) (map[string]float64, error) {
		return d.Analyze(tokens), nil
	}
}

type Options struct {
	Width             int           // 每一波并发的 worker 数
	FirstWaveRequests int           // 第一波每个 worker 的请求次数
	RequestsPerWorker int           // 之后每个 worker 的请求次数
	Retention         time.Duration // 超过该时长的博文不入库
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 3
	}
	if o.RequestsPerWorker <= 0 {
		o.RequestsPerWorker = 8
	}
	if o.FirstWaveRequests <= 0 {
		o.FirstWaveRequests = o.RequestsPerWorker
	}
	if o.Retention <= 0 {
		o.Retention = 72 * time.Hour
	}
	return o
}

// Stats 一次抓取的计数
type Stats struct {
	Fetches     int64 `json:"fetches"`
	FetchErrors int64 `json:"fetch_errors"`
	Accepted    int64 `json:"accepted"`
	Duplicates  int64 `json:"duplicates"`
	Stale       int64 `json:"stale"`
	Failed      int64 `json:"failed"`
}

type counters struct {
	fetches, fetchErrors, accepted, duplicates, stale, failed atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Fetches:     c.fetches.Load(),
		FetchErrors: c.fetchErrors.Load(),
		Accepted:    c.accepted.Load(),
		Duplicates:  c.duplicates.Load(),
		Stale:       c.stale.Load(),
		Failed:      c.failed.Load(),
	}
}

// Coordinator 抓取协调器，绑定到一个 store
type Coordinator struct {
	store     *repo.Store
	sessions  SessionFactory
	segmenter textkit.Segmenter
	extractor textkit.Extractor
	emotions  Emotions
	masker    *sensitive.Masker
	opts      Options
	now       func() time.Time
	log       *zap.Logger
}

type Option func(*Coordinator)

// WithMasker 入库前屏蔽正文敏感词
func WithMasker(m *sensitive.Masker) Option {
	return func(c *Coordinator) { c.masker = m }
}

// WithClock 替换当前时间，测试用
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

func NewCoordinator(
	store *repo.Store,
	sessions SessionFactory,
	segmenter textkit.Segmenter,
	extractor textkit.Extractor,
	emotions Emotions,
	opts Options,
	options ...Option,
) *Coordinator {
	c := &Coordinator{
		store:     store,
		sessions:  sessions,
		segmenter: segmenter,
		extractor: extractor,
		emotions:  emotions,
		opts:      opts.withDefaults(),
		now:       time.Now,
		log:       logger.Named("ingest").With(zap.String("store", store.Name)),
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// Run 按波次抓取 urls：每波最多 Width 个 worker，全部结束后抽取关键词再进入下一波
// 单个 worker 的失败不会影响其他 worker；只有库不可用才返回错误
func (c *Coordinator) Run(ctx context.Context, urls []string) (Stats, error) {
	var cnt counters
	start := time.Now()

	for waveStart, wave := 0, 0; waveStart < len(urls); waveStart, wave = waveStart+c.opts.Width, wave+1 {
		if err := ctx.Err(); err != nil {
			return cnt.snapshot(), err
		}
		end := min(waveStart+c.opts.Width, len(urls))
		quota := c.opts.RequestsPerWorker
		if wave == 0 {
			quota = c.opts.FirstWaveRequests
		}

		var g errgroup.Group
		for i, url := range urls[waveStart:end] {
			url := url
			worker := waveStart + i
			g.Go(func() error {
				c.work(ctx, worker, url, quota, &cnt)
				return nil
			})
		}
		_ = g.Wait()

		if err := c.ExtractKeywords(ctx); err != nil {
			return cnt.snapshot(), fmt.Errorf("extract keywords: %w", err)
		}
		c.log.Info("wave finished", zap.Int("wave", wave), zap.Int("workers", end-waveStart))
	}

	stats := cnt.snapshot()
	c.log.Info("ingest finished",
		zap.Int("urls", len(urls)),
		zap.Any("stats", stats),
		zap.Duration("elapsed", time.Since(start)),
	)
	return stats, nil
}

// work 一个 worker：独占一个会话，顺序执行 quota 次抓取
func (c *Coordinator) work(ctx context.Context, worker int, url string, quota int, cnt *counters) {
	session := c.sessions()
	for i := 0; i < quota; i++ {
		if ctx.Err() != nil {
			return
		}
		cnt.fetches.Add(1)
		body, err := session.Fetch(ctx, url)
		if err != nil {
			cnt.fetchErrors.Add(1)
			c.log.Warn("fetch failed", zap.Int("worker", worker), zap.Int("attempt", i+1), zap.Error(err))
			continue
		}
		payload, err := ParsePayload(body)
		if err != nil {
			cnt.fetchErrors.Add(1)
			c.log.Warn("parse failed", zap.Int("worker", worker), zap.Int("attempt", i+1), zap.Error(err))
			continue
		}
		c.storePayload(ctx, payload, cnt)
		c.log.Debug("fetch ok", zap.Int("worker", worker), zap.Int("attempt", i+1), zap.Int("statuses", len(payload.Statuses)))
	}
}

// storePayload 逐条入库，单条失败只记录日志
func (c *Coordinator) storePayload(ctx context.Context, payload *Payload, cnt *counters) {
	if cnt == nil {
		cnt = &counters{}
	}
	for _, st := range payload.Statuses {
		outcome, err := c.storeStatus(ctx, st)
		switch {
		case err != nil:
			cnt.failed.Add(1)
			c.log.Warn("store post failed", zap.Int64("post", st.ID), zap.Error(err))
		case outcome == outcomeDuplicate:
			cnt.duplicates.Add(1)
		case outcome == outcomeStale:
			cnt.stale.Add(1)
		default:
			cnt.accepted.Add(1)
		}
	}
}

type outcome int

const (
	outcomeAccepted outcome = iota
	outcomeDuplicate
	outcomeStale
)

var errDuplicate = errors.New("duplicate post")

func (c *Coordinator) storeStatus(ctx context.Context, st Status) (outcome, error) {
	post, err := st.ToPost()
	if err != nil {
		return 0, err
	}
	if c.now().Sub(post.CreatedAt) > c.opts.Retention {
		return outcomeStale, nil
	}
	exists, err := c.store.Posts.Exists(ctx, post.ID)
	if err != nil {
		return 0, err
	}
	if exists {
		return outcomeDuplicate, nil
	}

	post.Body = c.masker.Mask(post.Body)
	emotion, err := c.emotions(c.segmenter.Cut(post.Body))
	if err != nil {
		return 0, fmt.Errorf("emotion: %w", err)
	}
	post.Emotion = emotion

	err = c.store.Tx.Execute(ctx, nil, func(ctx context.Context) error {
		// 其他 worker 可能刚写入同一条
		exists, err := c.store.Posts.Exists(ctx, post.ID)
		if err != nil {
			return err
		}
		if exists {
			return errDuplicate
		}
		for _, marker := range st.TopicStruct {
			uuid := marker.UUID()
			if uuid == "" || post.HasTopic(uuid) {
				continue
			}
			post.TopicRefs = append(post.TopicRefs, uuid)
			if err := c.attachTopic(ctx, uuid, marker.TopicTitle, post.ID); err != nil {
				return err
			}
		}
		return c.store.Posts.Create(ctx, post)
	})
	if errors.Is(err, errDuplicate) {
		return outcomeDuplicate, nil
	}
	if err != nil {
		return 0, err
	}
	return outcomeAccepted, nil
}

// attachTopic 话题不存在则建桩，存在则计数加一并追加博文 id
func (c *Coordinator) attachTopic(ctx context.Context, uuid, title string, postID int64) error {
	topic, err := c.store.Topics.Get(ctx, uuid)
	if repo.IsNotFound(err) {
		return c.store.Topics.Create(ctx, &objects.Topic{
			UUID:            uuid,
			Title:           title,
			Keywords:        []string{},
			PostRefs:        []int64{postID},
			PostCount:       1,
			PostKeywordFreq: map[string]int{},
			Emotion:         map[string]float64{},
			HotRateSeries:   []int{},
		})
	}
	if err != nil {
		return err
	}
	topic.PostCount++
	topic.AddPost(postID)
	return c.store.Topics.Save(ctx, topic)
}

// ExtractKeywords 为尚无关键词的博文 (≤10) 与话题标题 (≤5) 抽取关键词
func (c *Coordinator) ExtractKeywords(ctx context.Context) error {
	posts, err := c.store.Posts.WithoutKeywords(ctx)
	if err != nil {
		return err
	}
	for i := range posts {
		kws := c.extractor.Extract(posts[i].Body, textkit.PostKeywordsK)
		if len(kws) == 0 {
			continue
		}
		posts[i].Keywords = kws
		if err := c.store.Posts.Save(ctx, &posts[i]); err != nil {
			return err
		}
	}

	topics, err := c.store.Topics.WithoutKeywords(ctx)
	if err != nil {
		return err
	}
	for i := range topics {
		kws := c.extractor.Extract(topics[i].Title, textkit.TopicKeywordsK)
		if len(kws) == 0 {
			continue
		}
		topics[i].Keywords = kws
		if err := c.store.Topics.Save(ctx, &topics[i]); err != nil {
			return err
		}
	}
	return nil
}
