// Package lifecycle 把抓取、合并、匹配、热度与阶段判定串成 initialize / refresh 两条流水线。
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iceymoss/weibo-trend/internal/aggregate"
	"github.com/iceymoss/weibo-trend/internal/dedup"
	"github.com/iceymoss/weibo-trend/internal/hotrate"
	"github.com/iceymoss/weibo-trend/internal/ingest"
	"github.com/iceymoss/weibo-trend/internal/match"
	"github.com/iceymoss/weibo-trend/internal/repo"
	"github.com/iceymoss/weibo-trend/internal/stage"
	"github.com/iceymoss/weibo-trend/internal/weight"
	"github.com/iceymoss/weibo-trend/pkg/db/objects"
	"github.com/iceymoss/weibo-trend/pkg/lock"
	"github.com/iceymoss/weibo-trend/pkg/logger"
	"github.com/iceymoss/weibo-trend/pkg/sensitive"
	"github.com/iceymoss/weibo-trend/pkg/textkit"
)

const (
	PipelineInitialize = "initialize"
	PipelineRefresh    = "refresh"
)

// Config 流水线参数
type Config struct {
	BaseURL   string // 如 https://weibo.com
	GroupsURL string // 频道列表地址，为空则不同步频道
	Rounds    int    // 每个频道的 refresh 轮次

	Retention      time.Duration
	Ingest         ingest.Options
	MergeThreshold float64
	MergeBatchSize int
	MatchTopK      int
	MatchThreshold float64
}

// Deps 流水线依赖的外部协作者
type Deps struct {
	Sessions  ingest.SessionFactory
	Segmenter textkit.Segmenter
	Extractor textkit.Extractor
	Emotions  ingest.Emotions
	Masker    *sensitive.Masker
	Locker    lock.Locker
	Now       func() time.Time
}

type Orchestrator struct {
	live    *repo.Store
	staging *repo.Store
	cfg     Config
	deps    Deps
	log     *zap.Logger
}

func New(live, staging *repo.Store, cfg Config, deps Deps) *Orchestrator {
	if cfg.Rounds <= 0 {
		cfg.Rounds = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 72 * time.Hour
	}
	cfg.Ingest.Retention = cfg.Retention
	if deps.Locker == nil {
		deps.Locker = lock.NewLocal()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Orchestrator{
		live:    live,
		staging: staging,
		cfg:     cfg,
		deps:    deps,
		log:     logger.Named("lifecycle"),
	}
}

func (o *Orchestrator) Live() *repo.Store    { return o.live }
func (o *Orchestrator) Staging() *repo.Store { return o.staging }

// Initialize 直接在 live 上跑完整流水线，然后把结果复制到 staging 作为之后 refresh 的基线
func (o *Orchestrator) Initialize(ctx context.Context) error {
	return o.exclusive(ctx, PipelineInitialize, o.live, func(ctx context.Context, stats map[string]int) error {
		o.syncChannels(ctx, o.live)
		if err := o.process(ctx, o.live, stats); err != nil {
			return err
		}
		if err := o.staging.CopyFrom(ctx, o.live); err != nil {
			return fmt.Errorf("seed staging: %w", err)
		}
		return nil
	})
}

// Refresh 在 staging 上清理过期数据并重算，最后整体替换 live
// 任何一步失败都不会修改 live
func (o *Orchestrator) Refresh(ctx context.Context) error {
	return o.exclusive(ctx, PipelineRefresh, o.staging, func(ctx context.Context, stats map[string]int) error {
		pruned, err := Prune(ctx, o.staging, o.deps.Now().Add(-o.cfg.Retention))
		if err != nil {
			return err
		}
		stats["pruned_posts"] = pruned.Posts
		stats["pruned_topics"] = pruned.TopicsDeleted

		if err := o.process(ctx, o.staging, stats); err != nil {
			return err
		}
		if err := o.live.CopyFrom(ctx, o.staging); err != nil {
			return fmt.Errorf("swap: %w", err)
		}
		return nil
	})
}

// process ingest → merge → match → aggregate → weight → hot rate → series → stage
func (o *Orchestrator) process(ctx context.Context, store *repo.Store, stats map[string]int) error {
	channels, err := store.Channels.All(ctx)
	if err != nil {
		return fmt.Errorf("load channels: %w", err)
	}
	if len(channels) == 0 {
		o.syncChannels(ctx, store)
		if channels, err = store.Channels.All(ctx); err != nil {
			return fmt.Errorf("load channels: %w", err)
		}
	}
	urls := ingest.BuildURLs(o.cfg.BaseURL, channels, o.cfg.Rounds)

	coordinator := ingest.NewCoordinator(store, o.deps.Sessions, o.deps.Segmenter, o.deps.Extractor,
		o.deps.Emotions, o.cfg.Ingest, ingest.WithMasker(o.deps.Masker), ingest.WithClock(o.deps.Now))
	ingested, err := coordinator.Run(ctx, urls)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	stats["accepted_posts"] = int(ingested.Accepted)
	stats["fetch_errors"] = int(ingested.FetchErrors)

	merged, err := dedup.NewMerger(store, o.cfg.MergeThreshold, o.cfg.MergeBatchSize).Run(ctx)
	if err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	stats["merged_topics"] = merged

	linked, err := match.NewMatcher(store, o.cfg.MatchTopK, o.cfg.MatchThreshold).Run(ctx)
	if err != nil {
		return fmt.Errorf("match: %w", err)
	}
	stats["matched_posts"] = linked

	topics, err := aggregate.Recompute(ctx, store)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	stats["topics"] = topics

	w, err := weight.NewLearner(store).Load(ctx)
	if err != nil {
		return err
	}
	calc := hotrate.NewCalculator(store, o.deps.Now)
	if err := calc.UpdateScores(ctx, w); err != nil {
		return fmt.Errorf("hot rate: %w", err)
	}
	if err := calc.UpdateSeries(ctx, w); err != nil {
		return fmt.Errorf("hot rate series: %w", err)
	}

	stages, err := stage.Update(ctx, store)
	if err != nil {
		return fmt.Errorf("stage: %w", err)
	}
	for s, n := range stages {
		stats["stage_"+s.String()] = n
	}
	return nil
}

// syncChannels 同步失败只记录日志，继续使用库中已有的频道
func (o *Orchestrator) syncChannels(ctx context.Context, store *repo.Store) {
	if o.cfg.GroupsURL == "" {
		return
	}
	n, err := ingest.SyncChannels(ctx, store, o.deps.Sessions(), o.cfg.GroupsURL)
	if err != nil {
		o.log.Warn("sync channels failed", zap.String("store", store.Name), zap.Error(err))
		return
	}
	o.log.Info("channels synced", zap.String("store", store.Name), zap.Int("channels", n))
}

// exclusive 持锁执行一次流水线，并在 live 中记录执行日志
func (o *Orchestrator) exclusive(
	ctx context.Context,
	pipeline string,
	target *repo.Store,
	fn func(ctx context.Context, stats map[string]int) error,
) error {
	unlock, err := o.deps.Locker.TryLock(ctx)
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			o.log.Warn("pipeline already running, skipped", zap.String("pipeline", pipeline))
		}
		return err
	}
	defer unlock()

	run := &objects.PipelineRun{
		RunID:     uuid.NewString(),
		Pipeline:  pipeline,
		Store:     target.Name,
		Status:    objects.RunRunning,
		Stats:     map[string]int{},
		StartTime: time.Now(),
	}
	if err := o.live.Runs.Start(ctx, run); err != nil {
		o.log.Error("record run start failed", zap.Error(err))
	}
	o.log.Info("pipeline started", zap.String("pipeline", pipeline), zap.String("run_id", run.RunID))

	runErr := fn(ctx, run.Stats)

	end := time.Now()
	run.EndTime = &end
	run.DurationMs = end.Sub(run.StartTime).Milliseconds()
	if runErr != nil {
		run.Status = objects.RunFailed
		run.ErrorMsg = runErr.Error()
		o.log.Error("pipeline failed",
			zap.String("pipeline", pipeline),
			zap.String("run_id", run.RunID),
			zap.Error(runErr),
		)
	} else {
		run.Status = objects.RunSuccess
		o.log.Info("pipeline finished",
			zap.String("pipeline", pipeline),
			zap.String("run_id", run.RunID),
			zap.Int64("duration_ms", run.DurationMs),
			zap.Any("stats", run.Stats),
		)
	}
	// 主流程可能因 ctx 取消而失败，日志仍要写进去
	if err := o.live.Runs.Finish(context.WithoutCancel(ctx), run); err != nil {
		o.log.Error("record run finish failed", zap.Error(err))
	}
	return runErr
}
