package objects

import (
	"time"

	"gorm.io/gorm"
)

// Post 对应 posts 表，一条抓取到的微博
type Post struct {
	// 微博自身的 id，不自增
	ID     int64  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Author string `gorm:"size:128" json:"author"`
	// 已去除 #话题# 标记
	Body string `gorm:"type:text" json:"body"`

	CreatedAt time.Time `gorm:"autoCreateTime:false;index" json:"created_at"`
	Reposts   int       `json:"reposts"`
	Comments  int       `json:"comments"`
	Likes     int       `json:"likes"`

	// 所属话题 uuid 列表，可为空
	TopicRefs []string `gorm:"serializer:json;type:text" json:"topic_refs"`
	// 分词后的关键词，抽取之前为空
	Keywords []string `gorm:"serializer:json;type:text" json:"keywords"`
	// 情感类别 -> 占比
	Emotion map[string]float64 `gorm:"serializer:json;type:text" json:"emotion"`
}

func (Post) TableName() string {
	return "posts"
}

// BeforeSave 发布时间统一按 UTC 入库
// sqlite 以文本保存时间，时区不一致时 created_at 的比较会出错
func (p *Post) BeforeSave(*gorm.DB) error {
	p.CreatedAt = p.CreatedAt.UTC()
	return nil
}

// HasTopic 判断博文是否已关联该话题
func (p *Post) HasTopic(uuid string) bool {
	for _, ref := range p.TopicRefs {
		if ref == uuid {
			return true
		}
	}
	return false
}

// ReplaceTopic 将 from 改写为 to，结果去重
func (p *Post) ReplaceTopic(from, to string) bool {
	changed := false
	refs := make([]string, 0, len(p.TopicRefs))
	seen := make(map[string]struct{}, len(p.TopicRefs))
	for _, ref := range p.TopicRefs {
		if ref == from {
			ref = to
			changed = true
		}
		if _, ok := seen[ref]; ok {
			changed = true
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	p.TopicRefs = refs
	return changed
}

// RemoveTopic 删除对某话题的引用
func (p *Post) RemoveTopic(uuid string) {
	refs := p.TopicRefs[:0]
	for _, ref := range p.TopicRefs {
		if ref != uuid {
			refs = append(refs, ref)
		}
	}
	p.TopicRefs = refs
}
