package objects

// Channel 对应 channels 表，仅用于拼接抓取地址
type Channel struct {
	GID         string `gorm:"column:gid;primaryKey;size:64" json:"gid"`
	Title       string `gorm:"size:128" json:"title"`
	ContainerID string `gorm:"column:container_id;size:128" json:"container_id"`
}

func (Channel) TableName() string {
	return "channels"
}
