package conf

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/iceymoss/weibo-trend/pkg/db"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Live     db.Config      `mapstructure:"live"`
	Staging  db.Config      `mapstructure:"staging"`
	Redis    db.RedisConfig `mapstructure:"redis"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Text     TextConfig     `mapstructure:"text"`
	Jobs     []JobConfig    `mapstructure:"jobs"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin 模式：debug / release / test
}

// IngestConfig 抓取相关
type IngestConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	GroupsURL         string        `mapstructure:"groups_url"`
	Rounds            int           `mapstructure:"rounds"`
	Width             int           `mapstructure:"width"`
	FirstWaveRequests int           `mapstructure:"first_wave_requests"`
	RequestsPerWorker int           `mapstructure:"requests_per_worker"`
	UserAgent         string        `mapstructure:"user_agent"`
	AcceptLanguage    string        `mapstructure:"accept_language"`
	Cookie            string        `mapstructure:"cookie"`
	Timeout           time.Duration `mapstructure:"timeout"`
	SensitiveDict     string        `mapstructure:"sensitive_dict"` // 为空则不屏蔽
}

// PipelineConfig 流水线相关
type PipelineConfig struct {
	Retention      time.Duration `mapstructure:"retention"`
	MergeThreshold float64       `mapstructure:"merge_threshold"`
	MergeBatchSize int           `mapstructure:"merge_batch_size"`
	MatchTopK      int           `mapstructure:"match_top_k"`
	MatchThreshold float64       `mapstructure:"match_threshold"`
	RefreshCron    string        `mapstructure:"refresh_cron"` // 为空则不自动刷新
	LockKey        string        `mapstructure:"lock_key"`
	LockTTL        time.Duration `mapstructure:"lock_ttl"`
}

// TextConfig 分词与情感词典；dict 为空时按空白切分
type TextConfig struct {
	Dict    string `mapstructure:"dict"`
	IDF     string `mapstructure:"idf"`
	Lexicon string `mapstructure:"lexicon"`
}

type JobConfig struct {
	Name   string                 `mapstructure:"name"`
	Cron   string                 `mapstructure:"cron"`
	Enable bool                   `mapstructure:"enable"`
	Params map[string]interface{} `mapstructure:"params"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("live.driver", db.DriverSQLite)
	v.SetDefault("live.dsn", "data/live.db")
	v.SetDefault("live.logLevel", "warn")
	v.SetDefault("staging.driver", db.DriverSQLite)
	v.SetDefault("staging.dsn", "data/staging.db")
	v.SetDefault("staging.logLevel", "warn")

	v.SetDefault("ingest.base_url", "https://weibo.com")
	v.SetDefault("ingest.groups_url", "https://weibo.com/ajax/feed/allGroups")
	v.SetDefault("ingest.rounds", 3)
	v.SetDefault("ingest.width", 3)
	v.SetDefault("ingest.first_wave_requests", 50)
	v.SetDefault("ingest.requests_per_worker", 8)
	v.SetDefault("ingest.accept_language", "zh-CN,zh;q=0.9")
	v.SetDefault("ingest.timeout", 15*time.Second)

	v.SetDefault("pipeline.retention", 72*time.Hour)
	v.SetDefault("pipeline.merge_threshold", 0.5)
	v.SetDefault("pipeline.merge_batch_size", 500)
	v.SetDefault("pipeline.match_top_k", 5)
	v.SetDefault("pipeline.match_threshold", 0.5)
	v.SetDefault("pipeline.refresh_cron", "0 0 */3 * * *")
	v.SetDefault("pipeline.lock_key", "weibo-trend:pipeline")
	v.SetDefault("pipeline.lock_ttl", 2*time.Hour)
}

// LoadConfig 加载配置，path 为空时只使用默认值与环境变量
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("TREND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // 自动读取环境变量，如 TREND_LIVE_DSN

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		// 允许环境变量替换 YAML 中的 ${VAR}
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	// 显式展开环境变量
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.Contains(val, "${") {
			v.Set(key, os.ExpandEnv(val))
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
