// Package textkit 分词与关键词抽取。
//
// 流水线只依赖 Segmenter / Extractor 两个接口，生产环境使用 gse，
// 测试与无词典环境使用按空白切分的 Fields。
package textkit

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	PostKeywordsK  = 10 // 博文关键词上限
	TopicKeywordsK = 5  // 话题标题关键词上限
)

// Segmenter 分词
type Segmenter interface {
	Cut(text string) []string
}

// Extractor 关键词抽取，返回按权重排序的前 topK 个词
type Extractor interface {
	Extract(text string, topK int) []string
}

// Fields 按空白切分的简单实现，关键词按词频排序，同频保持出现顺序
type Fields struct{}

func (Fields) Cut(text string) []string {
	return cleanTokens(strings.Fields(text))
}

func (f Fields) Extract(text string, topK int) []string {
	return topByFrequency(f.Cut(text), topK)
}

func topByFrequency(tokens []string, topK int) []string {
	freq := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := freq[tok]; !ok {
			order = append(order, tok)
		}
		freq[tok]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})
	if topK > 0 && len(order) > topK {
		order = order[:topK]
	}
	return order
}

// cleanTokens 去掉空白与纯标点
func cleanTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" || isPunct(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func isPunct(s string) bool {
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) && !unicode.IsSpace(r) {
			return false
		}
		s = s[size:]
	}
	return true
}
