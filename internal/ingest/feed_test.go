package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayload(t *testing.T) {
	body := []byte(`{"statuses":[{"id":5012345678901234,"user":{"screen_name":"新浪"},
		"text_raw":"#国庆出行# 高速 拥堵","created_at":"Tue Oct 14 21:05:33 +0800 2025",
		"reposts_count":3,"comments_count":4,"attitudes_count":5,
		"topic_struct":[{"topic_title":"国庆出行","actionlog":{"uuid":4567}},
		                {"topic_title":"高速","actionlog":{"uuid":"abc"}}]}]}`)

	p, err := ParsePayload(body)
	require.NoError(t, err)
	require.Len(t, p.Statuses, 1)
	st := p.Statuses[0]
	assert.Equal(t, "4567", st.TopicStruct[0].UUID())
	assert.Equal(t, "abc", st.TopicStruct[1].UUID())

	post, err := st.ToPost()
	require.NoError(t, err)
	assert.Equal(t, int64(5012345678901234), post.ID)
	assert.Equal(t, "新浪", post.Author)
	assert.Equal(t, "高速 拥堵", post.Body)
	assert.Equal(t, 5, post.Likes)
	assert.Equal(t, 2025, post.CreatedAt.Year())
	assert.Empty(t, post.TopicRefs)
	assert.NotNil(t, post.TopicRefs)
}

func TestParsePayload_Invalid(t *testing.T) {
	_, err := ParsePayload([]byte("<html>"))
	assert.Error(t, err)
}

func TestToPost_BadTime(t *testing.T) {
	_, err := Status{ID: 1, CreatedAt: "yesterday"}.ToPost()
	assert.Error(t, err)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "今天 天气", CleanText("#天气# 今天 天气 #晴#"))
	assert.Equal(t, "no marker", CleanText("no marker"))
}
