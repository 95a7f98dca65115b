// Package template provides placeholder substitution for action parameters.
// Placeholders like {{event.client_id}} are resolved as dotted paths into an
// immutable context snapshot and replaced with the stringified value, or with
// the empty string when unresolved. Substitution is literal text replacement,
// never expression evaluation.
package template

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/talentlane/automation/pkg/conditions"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.\-]+)\s*\}\}`)

// Render substitutes every {{path}} token in the input against the data root.
// Inputs without placeholders are returned unchanged.
func Render(input string, data map[string]any) string {
	if !strings.Contains(input, "{{") {
		return input
	}

	return placeholderPattern.ReplaceAllStringFunc(input, func(token string) string {
		path := strings.TrimSpace(strings.Trim(token, "{}"))

		value, found := conditions.LookupPath(data, path)
		if !found {
			return ""
		}

		return stringify(value)
	})
}

// RenderValue renders every string leaf of a nested value, descending into
// maps and slices. Non-string leaves pass through untouched.
func RenderValue(value any, data map[string]any) any {
	switch v := value.(type) {
	case string:
		return Render(v, data)
	case map[string]any:
		rendered := make(map[string]any, len(v))
		for key, item := range v {
			rendered[key] = RenderValue(item, data)
		}

		return rendered
	case []any:
		rendered := make([]any, len(v))
		for i, item := range v {
			rendered[i] = RenderValue(item, data)
		}

		return rendered
	default:
		return value
	}
}

// RenderParameters renders an action's parameter map against the context data.
func RenderParameters(parameters map[string]any, data map[string]any) map[string]any {
	rendered, _ := RenderValue(parameters, data).(map[string]any)
	if rendered == nil {
		rendered = map[string]any{}
	}

	return rendered
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case map[string]any, []any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}

		return string(encoded)
	default:
		return fmt.Sprintf("%v", v)
	}
}
