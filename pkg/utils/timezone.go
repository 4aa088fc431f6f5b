package utils

import (
	"time"
)

// FeedTimeLayout 微博接口 created_at 的格式，例如 "Tue Oct 14 21:05:33 +0800 2025"
const FeedTimeLayout = "Mon Jan 02 15:04:05 -0700 2006"

var (
	// ChinaLocation 中国时区 (UTC+8)
	ChinaLocation *time.Location
)

func init() {
	var err error
	ChinaLocation, err = time.LoadLocation("Asia/Shanghai")
	if err != nil {
		// 如果加载失败，使用固定偏移量 UTC+8
		ChinaLocation = time.FixedZone("CST", 8*60*60)
	}
}

// NowInChina 获取中国时区的当前时间
func NowInChina() time.Time {
	return time.Now().In(ChinaLocation)
}

// ParseFeedTime 解析接口时间并转换到中国时区
func ParseFeedTime(s string) (time.Time, error) {
	t, err := time.Parse(FeedTimeLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(ChinaLocation), nil
}
