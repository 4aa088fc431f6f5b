// Package stage 根据热度曲线判定话题所处的生命周期阶段。
package stage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iceymoss/weibo-trend/internal/repo"
	"github.com/iceymoss/weibo-trend/pkg/db/objects"
	"github.com/iceymoss/weibo-trend/pkg/logger"
)

const (
	recentEnd = 4 // 最近 12 小时：桶 0..3
	oldStart  = 8 // 24 小时以前：桶 8..23
)

// Classify 按顺序匹配，先命中者生效；不依赖话题之前的阶段
func Classify(series []int, mean float64) objects.Stage {
	if len(series) == 0 {
		return objects.StageDormant
	}
	recent := series[:min(recentEnd, len(series))]
	var old []int
	if len(series) > oldStart {
		old = series[oldStart:]
	}

	switch {
	case every(recent, func(v float64) bool { return v > mean }):
		return objects.StagePeak
	case some(old, func(v float64) bool { return v > mean }) &&
		every(recent, func(v float64) bool { return v <= mean }):
		return objects.StageDecline
	case every(series, func(v float64) bool { return v <= mean }):
		return objects.StageDormant
	default:
		return objects.StageGrowth
	}
}

func every(values []int, pred func(float64) bool) bool {
	for _, v := range values {
		if !pred(float64(v)) {
			return false
		}
	}
	return true
}

func some(values []int, pred func(float64) bool) bool {
	for _, v := range values {
		if pred(float64(v)) {
			return true
		}
	}
	return false
}

// Mean 所有话题 hot_rate 的均值，没有话题时 ok 为 false
func Mean(topics []objects.Topic) (mean float64, ok bool) {
	if len(topics) == 0 {
		return 0, false
	}
	sum := 0
	for _, t := range topics {
		sum += t.HotRate
	}
	return float64(sum) / float64(len(topics)), true
}

// Update 重新判定 store 中所有话题的阶段，返回各阶段数量
func Update(ctx context.Context, store *repo.Store) (map[objects.Stage]int, error) {
	topics, err := store.Topics.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load topics: %w", err)
	}
	counts := make(map[objects.Stage]int)
	mean, ok := Mean(topics)
	if !ok {
		return counts, nil
	}
	for i := range topics {
		topics[i].Stage = Classify(topics[i].HotRateSeries, mean)
		counts[topics[i].Stage]++
		if err := store.Topics.Save(ctx, &topics[i]); err != nil {
			return counts, fmt.Errorf("save topic %s: %w", topics[i].UUID, err)
		}
	}
	logger.Named("stage").Info("stages updated",
		zap.String("store", store.Name),
		zap.Float64("mean", mean),
		zap.Int("dormant", counts[objects.StageDormant]),
		zap.Int("growth", counts[objects.StageGrowth]),
		zap.Int("peak", counts[objects.StagePeak]),
		zap.Int("decline", counts[objects.StageDecline]),
	)
	return counts, nil
}
