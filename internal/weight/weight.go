// Package weight 用主成分分析学习热度权重。
package weight

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/iceymoss/weibo-trend/internal/repo"
	"github.com/iceymoss/weibo-trend/pkg/db/objects"
	"github.com/iceymoss/weibo-trend/pkg/logger"
)

// Learn 由话题的 (post_count, avg_likes, avg_comments, avg_reposts) 计算权重：
// 取第一主成分各分量的绝对值再按和归一化
// 样本不足、方差为 0 或分解失败时退化为均匀权重，第二个返回值为 false
func Learn(topics []objects.Topic) (objects.Weight, bool) {
	if len(topics) < 2 {
		return objects.UniformWeight(), false
	}
	data := make([]float64, 0, len(topics)*4)
	for _, t := range topics {
		data = append(data, float64(t.PostCount), t.AvgLikes, t.AvgComments, t.AvgReposts)
	}
	x := mat.NewDense(len(topics), 4, data)

	var pc stat.PC
	if !pc.PrincipalComponents(x, nil) {
		return objects.UniformWeight(), false
	}
	vars := pc.VarsTo(nil)
	if len(vars) == 0 || vars[0] <= 0 {
		return objects.UniformWeight(), false
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	loadings := make([]float64, 4)
	sum := 0.0
	for i := range loadings {
		loadings[i] = math.Abs(vecs.At(i, 0))
		sum += loadings[i]
	}
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return objects.UniformWeight(), false
	}
	return objects.Weight{
		ID:                objects.WeightID,
		PostCountWeight:   loadings[0] / sum,
		AvgLikesWeight:    loadings[1] / sum,
		AvgCommentsWeight: loadings[2] / sum,
		AvgRepostsWeight:  loadings[3] / sum,
	}, true
}

// Learner 读取已保存的权重，没有时学习一次并保存
type Learner struct {
	store *repo.Store
	log   *zap.Logger
}

func NewLearner(store *repo.Store) *Learner {
	return &Learner{store: store, log: logger.Named("weight").With(zap.String("store", store.Name))}
}

// Load 已有权重直接返回，不会因为话题变化而重新计算
func (l *Learner) Load(ctx context.Context) (objects.Weight, error) {
	w, found, err := l.store.Weights.Get(ctx)
	if err != nil {
		return objects.Weight{}, fmt.Errorf("load weight: %w", err)
	}
	if found {
		return w, nil
	}

	topics, err := l.store.Topics.All(ctx)
	if err != nil {
		return objects.Weight{}, fmt.Errorf("load topics: %w", err)
	}
	learned, ok := Learn(topics)
	if !ok {
		l.log.Warn("degenerate input, falling back to uniform weight", zap.Int("topics", len(topics)))
	}
	if err := l.store.Weights.Save(ctx, learned); err != nil {
		return objects.Weight{}, fmt.Errorf("save weight: %w", err)
	}
	l.log.Info("weight learned",
		zap.Float64("post_count", learned.PostCountWeight),
		zap.Float64("avg_likes", learned.AvgLikesWeight),
		zap.Float64("avg_comments", learned.AvgCommentsWeight),
		zap.Float64("avg_reposts", learned.AvgRepostsWeight),
	)
	return learned, nil
}
