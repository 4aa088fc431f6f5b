package repo

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/iceymoss/weibo-trend/pkg/db/objects"
	"github.com/iceymoss/weibo-trend/pkg/transaction"
)

type ChannelRepo struct {
	tx *transaction.Manager
}

// Upsert 按 gid 写入或覆盖频道
func (r *ChannelRepo) Upsert(ctx context.Context, ch *objects.Channel) error {
	return r.tx.DB(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(ch).Error
}

func (r *ChannelRepo) All(ctx context.Context) ([]objects.Channel, error) {
	var list []objects.Channel
	err := r.tx.DB(ctx).Order("gid ASC").Find(&list).Error
	return list, err
}
