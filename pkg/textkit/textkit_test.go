package textkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldsCutDropsPunctuation(t *testing.T) {
	got := Fields{}.Cut("  高考 ，  作文 !! 题目  ")
	assert.Equal(t, []string{"高考", "作文", "题目"}, got)
}

func TestFieldsExtractOrdersByFrequency(t *testing.T) {
	got := Fields{}.Extract("台风 登陆 台风 广东 登陆 台风 暴雨", 3)
	assert.Equal(t, []string{"台风", "登陆", "广东"}, got)
}

func TestFieldsExtractAllWhenTopKZero(t *testing.T) {
	got := Fields{}.Extract("a b c", 0)
	assert.Len(t, got, 3)
}
