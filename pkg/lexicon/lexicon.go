// Package lexicon 基于情感词典的情感分析。
package lexicon

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Entry 词典中一个词的情感分类与强度
type Entry struct {
	Category  string
	Intensity float64
}

// Dict 词 -> 情感
type Dict map[string]Entry

// Load 读取 csv 词典，每行 "词语,情感分类,强度"，首行表头可选
func Load(path string) (Dict, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse 同 Load，从 reader 读取；支持逗号或制表符分隔
func Parse(r io.Reader) (Dict, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(strings.NewReader(string(raw)))
	if strings.Contains(firstLine(string(raw)), "\t") {
		reader.Comma = '\t'
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	dict := make(Dict)
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(record) < 3 {
			continue
		}
		intensity, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			if line == 1 {
				// 表头
				continue
			}
			return nil, fmt.Errorf("line %d: bad intensity %q", line, record[2])
		}
		word := strings.TrimSpace(record[0])
		if word == "" {
			continue
		}
		dict[word] = Entry{Category: strings.TrimSpace(record[1]), Intensity: intensity}
	}
	return dict, nil
}

// Analyze 统计每个情感类别的强度之和，再除以总强度得到占比
// 没有命中任何词时返回空 map
func (d Dict) Analyze(tokens []string) map[string]float64 {
	sums := make(map[string]float64)
	total := 0.0
	for _, tok := range tokens {
		e, ok := d[tok]
		if !ok {
			continue
		}
		sums[e.Category] += e.Intensity
		total += e.Intensity
	}
	if total == 0 {
		return map[string]float64{}
	}
	for k, v := range sums {
		sums[k] = v / total
	}
	return sums
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
