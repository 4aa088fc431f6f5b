package sensitive

import (
	"fmt"

	"github.com/importcjj/sensitive"
)

// MaskRune 敏感词替换字符
const MaskRune = '*'

// Masker 入库前对博文正文做敏感词屏蔽
type Masker struct {
	Filter *sensitive.Filter
}

// NewMasker 从词库文件加载，每行一个词
func NewMasker(dictPath string) (*Masker, error) {
	filter := sensitive.New()
	if err := filter.LoadWordDict(dictPath); err != nil {
		return nil, fmt.Errorf("load sensitive dict %s: %w", dictPath, err)
	}
	return &Masker{Filter: filter}, nil
}

// NewMaskerFromWords 直接由词表构建
func NewMaskerFromWords(words ...string) *Masker {
	filter := sensitive.New()
	filter.AddWord(words...)
	return &Masker{Filter: filter}
}

// Mask 将命中的敏感词逐字替换为 MaskRune，nil Masker 原样返回
func (m *Masker) Mask(content string) string {
	if m == nil || m.Filter == nil {
		return content
	}
	return m.Filter.Replace(content, MaskRune)
}

// Validate 返回是否不含敏感词，以及第一个命中的词
func (m *Masker) Validate(content string) (bool, string) {
	if m == nil || m.Filter == nil {
		return true, ""
	}
	return m.Filter.Validate(content)
}
