package main

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/iceymoss/weibo-trend/internal/conf"
	"github.com/iceymoss/weibo-trend/internal/ingest"
	"github.com/iceymoss/weibo-trend/internal/lifecycle"
	"github.com/iceymoss/weibo-trend/internal/repo"
	"github.com/iceymoss/weibo-trend/pkg/db"
	"github.com/iceymoss/weibo-trend/pkg/lexicon"
	"github.com/iceymoss/weibo-trend/pkg/lock"
	"github.com/iceymoss/weibo-trend/pkg/logger"
	"github.com/iceymoss/weibo-trend/pkg/sensitive"
	"github.com/iceymoss/weibo-trend/pkg/textkit"
)

// app 进程内的全部依赖，进程启动时创建、退出时关闭
type app struct {
	cfg     *conf.Config
	live    *repo.Store
	staging *repo.Store
	orch    *lifecycle.Orchestrator
	closers []func()
}

func newApp(cfg *conf.Config) (*app, error) {
	a := &app{cfg: cfg}

	liveConn, err := a.open("live", cfg.Live)
	if err != nil {
		return nil, err
	}
	stagingConn, err := a.open("staging", cfg.Staging)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.live = repo.NewStore(repo.StoreLive, liveConn)
	a.staging = repo.NewStore(repo.StoreStaging, stagingConn)

	deps, err := a.deps()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.orch = lifecycle.New(a.live, a.staging, lifecycle.Config{
		BaseURL:   cfg.Ingest.BaseURL,
		GroupsURL: cfg.Ingest.GroupsURL,
		Rounds:    cfg.Ingest.Rounds,
		Retention: cfg.Pipeline.Retention,
		Ingest: ingest.Options{
			Width:             cfg.Ingest.Width,
			FirstWaveRequests: cfg.Ingest.FirstWaveRequests,
			RequestsPerWorker: cfg.Ingest.RequestsPerWorker,
		},
		MergeThreshold: cfg.Pipeline.MergeThreshold,
		MergeBatchSize: cfg.Pipeline.MergeBatchSize,
		MatchTopK:      cfg.Pipeline.MatchTopK,
		MatchThreshold: cfg.Pipeline.MatchThreshold,
	}, deps)
	return a, nil
}

func (a *app) open(name string, cfg db.Config) (*gorm.DB, error) {
	conn, err := db.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", name, err)
	}
	a.closers = append(a.closers, func() { db.Close(conn) })
	return conn, nil
}

// deps 组装分词、情感、屏蔽与锁
func (a *app) deps() (lifecycle.Deps, error) {
	cfg := a.cfg
	deps := lifecycle.Deps{
		Sessions: ingest.HTTPSessions(ingest.HTTPOptions{
			UserAgent:      cfg.Ingest.UserAgent,
			AcceptLanguage: cfg.Ingest.AcceptLanguage,
			Cookie:         cfg.Ingest.Cookie,
			Timeout:        cfg.Ingest.Timeout,
		}),
	}

	seg, err := textkit.NewGse(cfg.Text.Dict, cfg.Text.IDF)
	if err != nil {
		return deps, fmt.Errorf("init segmenter: %w", err)
	}
	deps.Segmenter, deps.Extractor = seg, seg

	dict := lexicon.Dict{}
	if cfg.Text.Lexicon != "" {
		if dict, err = lexicon.Load(cfg.Text.Lexicon); err != nil {
			return deps, fmt.Errorf("load lexicon: %w", err)
		}
	} else {
		logger.Warn("no emotion lexicon configured, emotions will be empty")
	}
	deps.Emotions = ingest.LexiconEmotions(dict)

	if cfg.Ingest.SensitiveDict != "" {
		if deps.Masker, err = sensitive.NewMasker(cfg.Ingest.SensitiveDict); err != nil {
			return deps, err
		}
	}

	if rdb := db.NewRedis(cfg.Redis); rdb != nil {
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		deps.Locker = lock.NewRedis(rdb, cfg.Pipeline.LockKey, cfg.Pipeline.LockTTL)
		logger.Info("using redis pipeline lock", zap.String("key", cfg.Pipeline.LockKey))
	} else {
		deps.Locker = lock.NewLocal()
	}
	return deps, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
