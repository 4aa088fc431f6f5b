package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/iceymoss/weibo-trend/pkg/db/objects"
	"github.com/iceymoss/weibo-trend/pkg/utils"
)

// Payload hottimeline 接口返回
type Payload struct {
	Statuses []Status `json:"statuses"`
}

type Status struct {
	ID   int64 `json:"id"`
	User struct {
		ScreenName string `json:"screen_name"`
	} `json:"user"`
	TextRaw        string        `json:"text_raw"`
	CreatedAt      string        `json:"created_at"`
	RepostsCount   int           `json:"reposts_count"`
	CommentsCount  int           `json:"comments_count"`
	AttitudesCount int           `json:"attitudes_count"`
	TopicStruct    []TopicMarker `json:"topic_struct"`
}

// TopicMarker 博文上挂的话题
type TopicMarker struct {
	TopicTitle string `json:"topic_title"`
	Actionlog  struct {
		UUID flexString `json:"uuid"`
	} `json:"actionlog"`
}

func (m TopicMarker) UUID() string {
	return string(m.Actionlog.UUID)
}

// flexString 接口里的 id 有时是数字有时是字符串
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// ParsePayload 解析 hottimeline 响应
func ParsePayload(body []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &p, nil
}

var topicMark = regexp.MustCompile(`#.*?#`)

// CleanText 去掉正文里的 #话题#
func CleanText(raw string) string {
	return strings.TrimSpace(topicMark.ReplaceAllString(raw, ""))
}

// ToPost 转为待入库的博文，话题引用由入库时填写
func (s Status) ToPost() (*objects.Post, error) {
	created, err := utils.ParseFeedTime(s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("post %d: created_at: %w", s.ID, err)
	}
	return &objects.Post{
		ID:        s.ID,
		Author:    s.User.ScreenName,
		Body:      CleanText(s.TextRaw),
		CreatedAt: created,
		Reposts:   s.RepostsCount,
		Comments:  s.CommentsCount,
		Likes:     s.AttitudesCount,
		TopicRefs: []string{},
		Keywords:  []string{},
		Emotion:   map[string]float64{},
	}, nil
}
