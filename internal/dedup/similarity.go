// Package dedup 按标题关键词相似度合并重复话题。
package dedup

import "math"

// Similarity 两组关键词的余弦相似度，按词频向量计算
// 任一侧为空或范数为 0 时返回 0
func Similarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	va, vb := termFreq(a), termFreq(b)

	dot := 0.0
	for term, x := range va {
		dot += x * vb[term]
	}
	norm := math.Sqrt(sumSquares(va)) * math.Sqrt(sumSquares(vb))
	if norm == 0 {
		return 0
	}
	return dot / norm
}

func termFreq(terms []string) map[string]float64 {
	tf := make(map[string]float64, len(terms))
	for _, t := range terms {
		tf[t]++
	}
	return tf
}

func sumSquares(v map[string]float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return s
}
