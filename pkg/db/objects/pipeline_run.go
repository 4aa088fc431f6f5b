package objects

import "time"

const (
	RunRunning = 0
	RunSuccess = 1
	RunFailed  = 2
)

// PipelineRun 对应 pipeline_runs 表，记录每一次流水线执行
// 只存在于 live 库，切换数据时不会被清空
type PipelineRun struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	RunID      string         `gorm:"uniqueIndex;size:36" json:"run_id"`
	Pipeline   string         `gorm:"index;size:64" json:"pipeline"` // initialize / refresh
	Store      string         `gorm:"size:32" json:"store"`
	Status     int            `json:"status"` // 0 Running, 1 Success, 2 Failed
	ErrorMsg   string         `gorm:"type:text" json:"error_msg,omitempty"`
	Stats      map[string]int `gorm:"serializer:json;type:text" json:"stats"`
	DurationMs int64          `json:"duration_ms"`
	StartTime  time.Time      `json:"start_time"`
	EndTime    *time.Time     `json:"end_time,omitempty"`
}

func (PipelineRun) TableName() string {
	return "pipeline_runs"
}
