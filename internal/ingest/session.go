package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// Session 一个独立的抓取会话，每个 worker 独占一个
type Session interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// SessionFactory 为每个 worker 创建新会话
type SessionFactory func() Session

// HTTPOptions 请求头等传输参数
type HTTPOptions struct {
	UserAgent      string
	AcceptLanguage string
	Cookie         string
	Timeout        time.Duration
}

// HTTPSession 自带 cookie jar 的 http 会话
type HTTPSession struct {
	client *http.Client
	opts   HTTPOptions
}

func NewHTTPSession(opts HTTPOptions) *HTTPSession {
	jar, _ := cookiejar.New(nil)
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPSession{
		client: &http.Client{Timeout: timeout, Jar: jar},
		opts:   opts,
	}
}

// HTTPSessions 返回 HTTPSession 工厂
func HTTPSessions(opts HTTPOptions) SessionFactory {
	return func() Session { return NewHTTPSession(opts) }
}

func (s *HTTPSession) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if s.opts.UserAgent != "" {
		req.Header.Set("User-Agent", s.opts.UserAgent)
	}
	if s.opts.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", s.opts.AcceptLanguage)
	}
	if s.opts.Cookie != "" {
		req.Header.Set("Cookie", s.opts.Cookie)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status code %d", resp.StatusCode)
	}
	return body, nil
}
