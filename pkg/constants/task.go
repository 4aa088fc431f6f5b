package constants

// TaskType 任务来源
type TaskType string

const (
	TaskTypeSYSTEM TaskType = "SYSTEM" // 代码中自动注册
	TaskTypeYAML   TaskType = "YAML"   // 配置文件声明
)
