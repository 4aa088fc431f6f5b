// Package match 用 TF-IDF 把无归属的博文挂到已有话题上。
package match

import (
	"math"
	"sort"
	"strings"
)

// Vector 稀疏向量，已做 L2 归一化
type Vector map[string]float64

// Space 在一组文档上拟合出的 TF-IDF 空间
// idf 采用平滑形式 ln((1+n)/(1+df)) + 1，未登录词忽略
type Space struct {
	idf map[string]float64
}

// Tokenize 按空白切分并转小写
func Tokenize(doc string) []string {
	return strings.Fields(strings.ToLower(doc))
}

// Fit 拟合 idf
func Fit(docs []string) *Space {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, tok := range Tokenize(doc) {
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}
	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for tok, d := range df {
		idf[tok] = math.Log((1+n)/(1+float64(d))) + 1
	}
	return &Space{idf: idf}
}

// Transform 将文档映射为向量
func (s *Space) Transform(doc string) Vector {
	v := make(Vector)
	for _, tok := range Tokenize(doc) {
		if w, ok := s.idf[tok]; ok {
			v[tok] += w
		}
	}
	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for tok := range v {
		v[tok] /= norm
	}
	return v
}

// Cosine 两个已归一化向量的余弦相似度
func Cosine(a, b Vector) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	dot := 0.0
	for tok, x := range a {
		dot += x * b[tok]
	}
	return dot
}

// Candidate 一个候选话题及其相似度
type Candidate struct {
	Index      int
	Similarity float64
}

// TopK 按相似度倒序取前 k 个，相同相似度保持原顺序
func TopK(query Vector, corpus []Vector, k int) []Candidate {
	list := make([]Candidate, 0, len(corpus))
	for i, v := range corpus {
		list = append(list, Candidate{Index: i, Similarity: Cosine(query, v)})
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Similarity > list[j].Similarity
	})
	if len(list) > k {
		list = list[:k]
	}
	return list
}
