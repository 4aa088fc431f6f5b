package repo

import (
	"context"

	"github.com/iceymoss/weibo-trend/pkg/db/objects"
	"github.com/iceymoss/weibo-trend/pkg/transaction"
)

type TopicRepo struct {
	tx *transaction.Manager
}

func (r *TopicRepo) Get(ctx context.Context, uuid string) (*objects.Topic, error) {
	var t objects.Topic
	if err := r.tx.DB(ctx).Where("uuid = ?", uuid).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TopicRepo) Create(ctx context.Context, t *objects.Topic) error {
	return r.tx.DB(ctx).Create(t).Error
}

func (r *TopicRepo) Save(ctx context.Context, t *objects.Topic) error {
	return r.tx.DB(ctx).Save(t).Error
}

func (r *TopicRepo) Delete(ctx context.Context, uuid string) error {
	return r.tx.DB(ctx).Delete(&objects.Topic{}, "uuid = ?", uuid).Error
}

// All 按 uuid 排序的全部话题
func (r *TopicRepo) All(ctx context.Context) ([]objects.Topic, error) {
	var list []objects.Topic
	err := r.tx.DB(ctx).Order("uuid ASC").Find(&list).Error
	return list, err
}

func (r *TopicRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.tx.DB(ctx).Model(&objects.Topic{}).Count(&count).Error
	return count, err
}

// PageAfter 以 uuid 为游标分页，afterUUID 为空表示第一页
func (r *TopicRepo) PageAfter(ctx context.Context, afterUUID string, limit int) ([]objects.Topic, error) {
	var list []objects.Topic
	q := r.tx.DB(ctx).Order("uuid ASC").Limit(limit)
	if afterUUID != "" {
		q = q.Where("uuid > ?", afterUUID)
	}
	err := q.Find(&list).Error
	return list, err
}

// WithoutKeywords 尚未抽取标题关键词的话题
func (r *TopicRepo) WithoutKeywords(ctx context.Context) ([]objects.Topic, error) {
	var list []objects.Topic
	err := r.tx.DB(ctx).
		Where("keywords IS NULL OR keywords IN ?", emptyRefs).
		Order("uuid ASC").Find(&list).Error
	return list, err
}

// Hottest 按热度倒序，供看板读取
func (r *TopicRepo) Hottest(ctx context.Context, stage objects.Stage, limit int) ([]objects.Topic, error) {
	var list []objects.Topic
	q := r.tx.DB(ctx).Order("hot_rate DESC").Order("uuid ASC").Limit(limit)
	if stage != objects.StageUnset {
		q = q.Where("stage = ?", stage)
	}
	err := q.Find(&list).Error
	return list, err
}
