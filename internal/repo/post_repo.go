package repo

import (
	"context"
	"time"

	"github.com/iceymoss/weibo-trend/pkg/db/objects"
	"github.com/iceymoss/weibo-trend/pkg/transaction"
)

// 空 topic_refs 在库中的几种写法
var emptyRefs = []string{"", "[]", "null"}

type PostRepo struct {
	tx *transaction.Manager
}

// Exists 按 id 判断博文是否已入库
func (r *PostRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.tx.DB(ctx).Model(&objects.Post{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *PostRepo) Create(ctx context.Context, p *objects.Post) error {
	return r.tx.DB(ctx).Create(p).Error
}

func (r *PostRepo) Save(ctx context.Context, p *objects.Post) error {
	return r.tx.DB(ctx).Save(p).Error
}

func (r *PostRepo) Get(ctx context.Context, id int64) (*objects.Post, error) {
	var p objects.Post
	if err := r.tx.DB(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostRepo) Delete(ctx context.Context, id int64) error {
	return r.tx.DB(ctx).Delete(&objects.Post{}, "id = ?", id).Error
}

func (r *PostRepo) All(ctx context.Context) ([]objects.Post, error) {
	var list []objects.Post
	err := r.tx.DB(ctx).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *PostRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.tx.DB(ctx).Model(&objects.Post{}).Count(&count).Error
	return count, err
}

// FindByIDs 批量读取，不存在的 id 直接忽略
func (r *PostRepo) FindByIDs(ctx context.Context, ids []int64) ([]objects.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []objects.Post
	err := r.tx.DB(ctx).Where("id IN ?", ids).Order("id ASC").Find(&list).Error
	return list, err
}

// Unowned 没有任何话题的博文
func (r *PostRepo) Unowned(ctx context.Context) ([]objects.Post, error) {
	var list []objects.Post
	err := r.tx.DB(ctx).
		Where("topic_refs IS NULL OR topic_refs IN ?", emptyRefs).
		Order("id ASC").Find(&list).Error
	return list, err
}

// WithoutKeywords 尚未抽取关键词的博文
func (r *PostRepo) WithoutKeywords(ctx context.Context) ([]objects.Post, error) {
	var list []objects.Post
	err := r.tx.DB(ctx).
		Where("keywords IS NULL OR keywords IN ?", emptyRefs).
		Order("id ASC").Find(&list).Error
	return list, err
}

// ReferencingTopic 所有 topic_refs 中包含 uuid 的博文
func (r *PostRepo) ReferencingTopic(ctx context.Context, uuid string) ([]objects.Post, error) {
	var candidates []objects.Post
	// uuid 中的通配符只会放宽预筛，不会漏掉记录
	err := r.tx.DB(ctx).Where("topic_refs LIKE ?", `%"`+uuid+`"%`).Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	// LIKE 只做预筛，以反序列化后的结果为准
	list := candidates[:0]
	for _, p := range candidates {
		if p.HasTopic(uuid) {
			list = append(list, p)
		}
	}
	return list, nil
}

// OlderThan 发布时间早于 t 的博文
func (r *PostRepo) OlderThan(ctx context.Context, t time.Time) ([]objects.Post, error) {
	var list []objects.Post
	err := r.tx.DB(ctx).Where("created_at < ?", t.UTC()).Order("id ASC").Find(&list).Error
	return list, err
}

// KeywordFrequencies 全库博文关键词词频，用于首页词云
func (r *PostRepo) KeywordFrequencies(ctx context.Context) (map[string]int, error) {
	var list []objects.Post
	if err := r.tx.DB(ctx).Select("id", "keywords").Find(&list).Error; err != nil {
		return nil, err
	}
	freq := make(map[string]int)
	for _, p := range list {
		for _, kw := range p.Keywords {
			freq[kw]++
		}
	}
	return freq, nil
}
