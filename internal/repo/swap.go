package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/iceymoss/weibo-trend/pkg/db/objects"
)

const copyBatchSize = 200

// Snapshot 一个库中参与切换的全部数据，已物化
type Snapshot struct {
	Posts    []objects.Post
	Channels []objects.Channel
	Weights  []objects.Weight
	Topics   []objects.Topic
}

// Snapshot 读取 posts / channels / weights / topics 四张表
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	conn := s.Tx.DB(ctx)
	if err := conn.Order("id ASC").Find(&snap.Posts).Error; err != nil {
		return nil, fmt.Errorf("read posts: %w", err)
	}
	if err := conn.Order("gid ASC").Find(&snap.Channels).Error; err != nil {
		return nil, fmt.Errorf("read channels: %w", err)
	}
	if err := conn.Order("id ASC").Find(&snap.Weights).Error; err != nil {
		return nil, fmt.Errorf("read weights: %w", err)
	}
	if err := conn.Order("uuid ASC").Find(&snap.Topics).Error; err != nil {
		return nil, fmt.Errorf("read topics: %w", err)
	}
	return snap, nil
}

// ReplaceWith 在一个事务内清空四张表并写入 snap，主键保持不变
// 读者要么看到旧数据，要么看到新数据
func (s *Store) ReplaceWith(ctx context.Context, snap *Snapshot) error {
	return s.Tx.Execute(ctx, nil, func(ctx context.Context) error {
		conn := s.Tx.DB(ctx)
		for _, model := range []any{&objects.Post{}, &objects.Channel{}, &objects.Weight{}, &objects.Topic{}} {
			if err := conn.Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		if err := createAll(conn, snap.Posts); err != nil {
			return fmt.Errorf("copy posts: %w", err)
		}
		if err := createAll(conn, snap.Channels); err != nil {
			return fmt.Errorf("copy channels: %w", err)
		}
		if err := createAll(conn, snap.Weights); err != nil {
			return fmt.Errorf("copy weights: %w", err)
		}
		if err := createAll(conn, snap.Topics); err != nil {
			return fmt.Errorf("copy topics: %w", err)
		}
		return nil
	})
}

// CopyFrom 用 src 的全部数据替换当前库
func (s *Store) CopyFrom(ctx context.Context, src *Store) error {
	snap, err := src.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", src.Name, err)
	}
	if err := s.ReplaceWith(ctx, snap); err != nil {
		return fmt.Errorf("replace %s: %w", s.Name, err)
	}
	return nil
}

func createAll[T any](conn *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return conn.CreateInBatches(&rows, copyBatchSize).Error
}
