package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// RawMetadata 数据源返回的原始元数据 (oEmbed 响应或抓取任务的结果项)
type RawMetadata map[string]any

// String 按顺序查找候选键, 返回第一个非空字符串
func (m RawMetadata) String(keys ...string) (string, bool) {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		var s string
		switch val := v.(type) {
		case string:
			s = val
		case json.Number:
			s = val.String()
		case float64:
			s = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s, true
		}
	}
	return "", false
}

// Float 按顺序查找候选键, 返回第一个非零数值
func (m RawMetadata) Float(keys ...string) (float64, bool) {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		var f float64
		switch val := v.(type) {
		case float64:
			f = val
		case float32:
			f = float64(val)
		case int:
			f = float64(val)
		case int64:
			f = float64(val)
		case json.Number:
			parsed, err := val.Float64()
			if err != nil {
				continue
			}
			f = parsed
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
			if err != nil {
				continue
			}
			f = parsed
		default:
			continue
		}
		if f != 0 {
			return f, true
		}
	}
	return 0, false
}

// Count 按顺序查找候选键, 返回第一个非零计数, 负数视为 0
func (m RawMetadata) Count(keys ...string) int64 {
	f, ok := m.Float(keys...)
	if !ok || f < 0 {
		return 0
	}
	return int64(f)
}
