package testkit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/iceymoss/weibo-trend/pkg/utils"
)

// FeedPost 构造假接口数据用的一条博文
type FeedPost struct {
	ID       int64
	Author   string
	Text     string
	Created  time.Time
	Reposts  int
	Comments int
	Likes    int
	Topics   map[string]string // uuid -> 标题
}

// FeedJSON 生成 hottimeline 格式的响应
func FeedJSON(posts ...FeedPost) []byte {
	type marker struct {
		TopicTitle string `json:"topic_title"`
		Actionlog  struct {
			UUID string `json:"uuid"`
		} `json:"actionlog"`
	}
	type status struct {
		ID   int64 `json:"id"`
		User struct {
			ScreenName string `json:"screen_name"`
		} `json:"user"`
		TextRaw        string   `json:"text_raw"`
		CreatedAt      string   `json:"created_at"`
		RepostsCount   int      `json:"reposts_count"`
		CommentsCount  int      `json:"comments_count"`
		AttitudesCount int      `json:"attitudes_count"`
		TopicStruct    []marker `json:"topic_struct"`
	}
	list := make([]status, 0, len(posts))
	for _, p := range posts {
		s := status{
			ID:             p.ID,
			TextRaw:        p.Text,
			CreatedAt:      p.Created.In(utils.ChinaLocation).Format(utils.FeedTimeLayout),
			RepostsCount:   p.Reposts,
			CommentsCount:  p.Comments,
			AttitudesCount: p.Likes,
		}
		s.User.ScreenName = p.Author
		for uuid, title := range p.Topics {
			m := marker{TopicTitle: title}
			m.Actionlog.UUID = uuid
			s.TopicStruct = append(s.TopicStruct, m)
		}
		list = append(list, s)
	}
	body, _ := json.Marshal(map[string]any{"statuses": list})
	return body
}

// FakeFeed 按 url 返回固定响应的假数据源，可并发使用
type FakeFeed struct {
	mu        sync.Mutex
	responses map[string][]byte
	failures  map[string]error
	calls     map[string]int
}

func NewFakeFeed() *FakeFeed {
	return &FakeFeed{
		responses: make(map[string][]byte),
		failures:  make(map[string]error),
		calls:     make(map[string]int),
	}
}

// Serve 设置 url 的响应
func (f *FakeFeed) Serve(url string, body []byte) *FakeFeed {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[url] = body
	return f
}

// Fail 让 url 的请求全部失败
func (f *FakeFeed) Fail(url string, err error) *FakeFeed {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[url] = err
	return f
}

// Calls 返回 url 被请求的次数
func (f *FakeFeed) Calls(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func (f *FakeFeed) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if err := f.failures[url]; err != nil {
		return nil, err
	}
	body, ok := f.responses[url]
	if !ok {
		return nil, fmt.Errorf("status code 404")
	}
	return body, nil
}
