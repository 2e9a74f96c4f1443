package resume

import (
	"strconv"
	"strings"

	"resumebuilder/internal/media"
)

// lenientScalars 把模型输出里常见的标量类型偏差转成 Document 期望的类型：
// 数字、布尔写进字符串字段，"true"/"false" 写进布尔字段，字符串数组写进描述字段。
// 结构性错误（例如列表位置给了对象）保持原样，由 merge 拒绝。
// 输入不被修改。
func lenientScalars(fields map[string]any) map[string]any {
	out := copyFields(fields)
	for key, value := range out {
		switch key {
		case "title", "template", "accentColor", "professionalSummary":
			out[key] = asString(value)
		case "public":
			out[key] = asBool(value)
		case "skills":
			out[key] = mapList(value, asString)
		case "personal_info":
			out[key] = mapObject(value, nil)
		case "experience":
			out[key] = mapList(value, func(v any) any { return mapObject(v, experienceBoolKeys) })
		case "projects", "education":
			out[key] = mapList(value, func(v any) any { return mapObject(v, nil) })
		}
	}
	return out
}

var experienceBoolKeys = map[string]bool{"is_current": true}

func asString(value any) any {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		lines := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := asString(item).(string)
			if !ok {
				return value
			}
			lines = append(lines, s)
		}
		return strings.Join(lines, "\n")
	default:
		return value
	}
}

func asBool(value any) any {
	switch v := value.(type) {
	case string:
		return media.ParseTruthy(v)
	case float64:
		return v != 0
	default:
		return value
	}
}

func mapList(value any, fn func(any) any) any {
	items, ok := value.([]any)
	if !ok {
		return value
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return out
}

func mapObject(value any, boolKeys map[string]bool) any {
	obj, ok := value.(map[string]any)
	if !ok {
		return value
	}
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		if boolKeys[k] {
			out[k] = asBool(v)
		} else {
			out[k] = asString(v)
		}
	}
	return out
}
