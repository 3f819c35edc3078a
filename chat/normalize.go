package chat

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NormalizeContent 把服务端可能返回的各种 content 形态统一成纯文本：
//   - string 原样返回
//   - 带 "text" 字段的 map 递归取 text
//   - 不带 "text" 的 map 序列化成 JSON
//   - 列表取各元素的文本（map 元素取 "text"），用换行拼接
//   - 其余值按 fmt 规则字符串化
func NormalizeContent(content any) string {
	switch value := content.(type) {
	case nil:
		return ""
	case string:
		return value
	case map[string]any:
		if text, ok := value["text"]; ok && text != nil {
			return NormalizeContent(text)
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		return string(encoded)
	case []any:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			var text string
			if itemMap, ok := item.(map[string]any); ok {
				text = NormalizeContent(itemMap["text"])
			} else {
				text = fmt.Sprint(item)
			}
			if text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, "\n")
	default:
		return fmt.Sprint(value)
	}
}
