package repo

import (
	"errors"

	"gorm.io/gorm"

	"github.com/iceymoss/weibo-trend/pkg/transaction"
)

const (
	StoreLive    = "live"
	StoreStaging = "staging"
)

// Store 一个逻辑库（live 或 staging）的句柄，显式传给各个组件
type Store struct {
	Name string
	DB   *gorm.DB
	Tx   *transaction.Manager

	Posts    *PostRepo
	Topics   *TopicRepo
	Weights  *WeightRepo
	Channels *ChannelRepo
	Runs     *RunRepo
}

func NewStore(name string, conn *gorm.DB) *Store {
	tx := transaction.NewManager(conn)
	return &Store{
		Name:     name,
		DB:       conn,
		Tx:       tx,
		Posts:    &PostRepo{tx: tx},
		Topics:   &TopicRepo{tx: tx},
		Weights:  &WeightRepo{tx: tx},
		Channels: &ChannelRepo{tx: tx},
		Runs:     &RunRepo{tx: tx},
	}
}

// IsNotFound 判断是否为记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
