package objects

import "strings"

// Stage 话题生命周期阶段
type Stage int

const (
	StageUnset   Stage = 0
	StageDormant Stage = 1 // 潜伏期
	StageGrowth  Stage = 2 // 成长期
	StagePeak    Stage = 3 // 高潮期
	StageDecline Stage = 4 // 衰退期
)

func (s Stage) String() string {
	switch s {
	case StageDormant:
		return "DORMANT"
	case StageGrowth:
		return "GROWTH"
	case StagePeak:
		return "PEAK"
	case StageDecline:
		return "DECLINE"
	default:
		return "UNSET"
	}
}

// ParseStage 解析阶段名，大小写不敏感
func ParseStage(name string) (Stage, bool) {
	for _, s := range []Stage{StageDormant, StageGrowth, StagePeak, StageDecline} {
		if strings.EqualFold(name, s.String()) {
			return s, true
		}
	}
	return StageUnset, false
}

// Topic 对应 topics 表
type Topic struct {
	UUID  string `gorm:"column:uuid;primaryKey;size:64" json:"uuid"`
	Title string `gorm:"size:255" json:"title"`
	// 标题关键词 (≤5)，只用于合并与匹配
	Keywords []string `gorm:"serializer:json;type:text" json:"keywords"`

	PostRefs  []int64 `gorm:"serializer:json;type:text" json:"post_refs"`
	PostCount int     `gorm:"default:0" json:"post_count"`
	// 成员博文关键词词频，用于词云
	PostKeywordFreq map[string]int `gorm:"serializer:json;type:text" json:"post_keyword_freq"`

	AvgLikes    float64            `json:"avg_likes"`
	AvgComments float64            `json:"avg_comments"`
	AvgReposts  float64            `json:"avg_reposts"`
	Emotion     map[string]float64 `gorm:"serializer:json;type:text" json:"emotion"`

	HotRate int `gorm:"index" json:"hot_rate"`
	// 下标 0 为最近 3 小时，共 24 个桶
	HotRateSeries []int `gorm:"serializer:json;type:text" json:"hot_rate_series"`
	Stage         Stage `gorm:"default:0" json:"stage"`
}

func (Topic) TableName() string {
	return "topics"
}

// AddPost 追加博文 id（已存在则忽略），返回是否追加
func (t *Topic) AddPost(id int64) bool {
	for _, ref := range t.PostRefs {
		if ref == id {
			return false
		}
	}
	t.PostRefs = append(t.PostRefs, id)
	return true
}

// RemovePost 从 PostRefs 中删除博文 id，返回是否删除
func (t *Topic) RemovePost(id int64) bool {
	refs := t.PostRefs[:0]
	removed := false
	for _, ref := range t.PostRefs {
		if ref == id {
			removed = true
			continue
		}
		refs = append(refs, ref)
	}
	t.PostRefs = refs
	return removed
}

// Absorb 合并另一话题的博文列表并去重，PostCount 取并集大小
func (t *Topic) Absorb(other *Topic) {
	for _, id := range other.PostRefs {
		t.AddPost(id)
	}
	t.PostRefs = UniqueIDs(t.PostRefs)
	t.PostCount = len(t.PostRefs)
}

// UniqueIDs 保序去重
func UniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
