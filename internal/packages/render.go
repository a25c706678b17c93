package packages

import (
	"fmt"

	"github.com/cbroglie/mustache"
)

// Render returns a copy of tmpl with every string leaf rendered as a
// mustache template against values. Unknown placeholders render empty.
func Render(tmpl map[string]interface{}, values map[string]interface{}) (map[string]interface{}, error) {
	out, err := renderValue(tmpl, values)
	if err != nil {
		return nil, err
	}
	return out.(map[string]interface{}), nil
}

func renderValue(v interface{}, values map[string]interface{}) (interface{}, error) {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, child := range t {
			r, err := renderValue(child, values)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, child := range t {
			r, err := renderValue(child, values)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	case string:
		s, err := mustache.Render(t, values)
		if err != nil {
			return nil, fmt.Errorf("failed to render %q: %w", t, err)
		}
		return s, nil
	default:
		return v, nil
	}
}

// Merge deep-merges user over defaults into a new map; neither input is
// modified. Nested maps merge recursively, lists concatenate as
// defaults followed by user, any other conflict is won by user. Merging
// the same user value twice grows its lists again.
func Merge(defaults, user map[string]interface{}) map[string]interface{} {
	out := deepCopy(defaults).(map[string]interface{})
	for k, uv := range user {
		dv, ok := out[k]
		if !ok {
			out[k] = deepCopy(uv)
			continue
		}
		switch d := dv.(type) {
		case map[string]interface{}:
			if u, ok := uv.(map[string]interface{}); ok {
				out[k] = Merge(d, u)
				continue
			}
		case []interface{}:
			if u, ok := uv.([]interface{}); ok {
				merged := make([]interface{}, 0, len(d)+len(u))
				merged = append(merged, d...)
				merged = append(merged, deepCopy(u).([]interface{})...)
				out[k] = merged
				continue
			}
		}
		out[k] = deepCopy(uv)
	}
	return out
}

func deepCopy(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, child := range t {
			out[k] = deepCopy(child)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, child := range t {
			out[i] = deepCopy(child)
		}
		return out
	default:
		return v
	}
}
