package repo

import (
	"context"

	"github.com/iceymoss/weibo-trend/pkg/db/objects"
	"github.com/iceymoss/weibo-trend/pkg/transaction"
)

type WeightRepo struct {
	tx *transaction.Manager
}

// Get 读取唯一的权重记录，尚未计算时 found 为 false
func (r *WeightRepo) Get(ctx context.Context) (w objects.Weight, found bool, err error) {
	var list []objects.Weight
	if err = r.tx.DB(ctx).Where("id = ?", objects.WeightID).Limit(1).Find(&list).Error; err != nil {
		return w, false, err
	}
	if len(list) == 0 {
		return w, false, nil
	}
	return list[0], true, nil
}

func (r *WeightRepo) Save(ctx context.Context, w objects.Weight) error {
	w.ID = objects.WeightID
	return r.tx.DB(ctx).Save(&w).Error
}

// Invalidate 删除已缓存的权重，下次使用时重新学习
func (r *WeightRepo) Invalidate(ctx context.Context) error {
	return r.tx.DB(ctx).Where("1 = 1").Delete(&objects.Weight{}).Error
}
