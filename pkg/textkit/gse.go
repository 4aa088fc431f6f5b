package textkit

import (
	"fmt"

	"github.com/go-ego/gse"
	"github.com/go-ego/gse/hmm/idf"
)

// Gse 基于 gse 的中文分词与 TF-IDF 关键词抽取
type Gse struct {
	seg gse.Segmenter
	tag idf.TagExtracter
}

// NewGse dictPath / idfPath 为空时使用 gse 内置词典
func NewGse(dictPath, idfPath string) (*Gse, error) {
	g := &Gse{}
	var err error
	if dictPath != "" {
		err = g.seg.LoadDict(dictPath)
	} else {
		err = g.seg.LoadDict()
	}
	if err != nil {
		return nil, fmt.Errorf("load dict: %w", err)
	}

	g.tag.WithGse(g.seg)
	if idfPath != "" {
		err = g.tag.LoadIdf(idfPath)
	} else {
		err = g.tag.LoadIdf()
	}
	if err != nil {
		return nil, fmt.Errorf("load idf: %w", err)
	}
	return g, nil
}

func (g *Gse) Cut(text string) []string {
	return cleanTokens(g.seg.Cut(text, true))
}

func (g *Gse) Extract(text string, topK int) []string {
	tags := g.tag.ExtractTags(text, topK)
	words := make([]string, 0, len(tags))
	for _, tag := range tags {
		words = append(words, tag.Text)
	}
	return cleanTokens(words)
}
