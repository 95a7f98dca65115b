// Package conditions evaluates rule conditions against event and execution
// context data. Evaluation is pure and total: malformed expressions and
// unresolved paths evaluate to false, never to a panic or an error.
package conditions

import (
	"reflect"
	"strconv"
	"strings"
)

// Operators supported by expression tree leaves.
const (
	OperatorEq       = "eq"
	OperatorNeq      = "neq"
	OperatorGt       = "gt"
	OperatorLt       = "lt"
	OperatorContains = "contains"
)

// MatchesEvent reports whether an event satisfies an EVENT_BASED rule's
// trigger conditions: the event type must equal conditions.event_type and
// every filter key must equal the value at its dotted path in the payload.
func MatchesEvent(eventType string, filters map[string]any, data map[string]any) bool {
	if eventType == "" {
		return false
	}

	actualType, _ := data["event_type"].(string)
	if actualType != eventType {
		return false
	}

	for path, expected := range filters {
		actual, found := LookupPath(data, path)
		if !found || !looseEqual(actual, expected) {
			return false
		}
	}

	return true
}

// Evaluate walks a boolean expression tree of {field, operator, value} leaves
// combined through {all: [...]} and {any: [...]} nodes. A nil expression is
// vacuously true; an unrecognized node shape is false.
func Evaluate(expr map[string]any, data map[string]any) bool {
	if len(expr) == 0 {
		return true
	}

	if children, ok := expr["all"].([]any); ok {
		for _, child := range children {
			node, ok := child.(map[string]any)
			if !ok || !Evaluate(node, data) {
				return false
			}
		}

		return true
	}

	if children, ok := expr["any"].([]any); ok {
		for _, child := range children {
			if node, ok := child.(map[string]any); ok && Evaluate(node, data) {
				return true
			}
		}

		return false
	}

	return evaluateLeaf(expr, data)
}

func evaluateLeaf(node map[string]any, data map[string]any) bool {
	field, _ := node["field"].(string)
	operator, _ := node["operator"].(string)
	if field == "" || operator == "" {
		return false
	}

	actual, found := LookupPath(data, field)
	if !found {
		return false
	}

	expected := node["value"]

	switch operator {
	case OperatorEq:
		return looseEqual(actual, expected)
	case OperatorNeq:
		return !looseEqual(actual, expected)
	case OperatorGt:
		cmp, ok := compare(actual, expected)

		return ok && cmp > 0
	case OperatorLt:
		cmp, ok := compare(actual, expected)

		return ok && cmp < 0
	case OperatorContains:
		return contains(actual, expected)
	default:
		return false
	}
}

// LookupPath resolves a dotted path like "invoice.client.id" into nested
// maps. The second return reports whether the full path resolved.
func LookupPath(data map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var current any = data

	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// looseEqual compares across the numeric types JSON decoding produces, so a
// stored filter value of 3 matches a payload value of 3.0. Non-numeric
// operands go through DeepEqual: JSON payloads carry maps and slices, which
// the == operator panics on.
func looseEqual(a, b any) bool {
	if na, ok := toFloat(a); ok {
		if nb, ok := toFloat(b); ok {
			return na == nb
		}
	}

	return reflect.DeepEqual(a, b)
}

// compare returns -1/0/1 for numeric operands, falling back to string
// ordering when both sides are strings.
func compare(a, b any) (int, bool) {
	na, aNum := toFloat(a)
	nb, bNum := toFloat(b)

	if aNum && bNum {
		switch {
		case na < nb:
			return -1, true
		case na > nb:
			return 1, true
		default:
			return 0, true
		}
	}

	sa, aStr := a.(string)
	sb, bStr := b.(string)

	if aStr && bStr {
		return strings.Compare(sa, sb), true
	}

	return 0, false
}

func contains(actual, expected any) bool {
	switch v := actual.(type) {
	case string:
		needle, ok := expected.(string)

		return ok && strings.Contains(v, needle)
	case []any:
		for _, item := range v {
			if looseEqual(item, expected) {
				return true
			}
		}
	}

	return false
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)

		return parsed, err == nil
	default:
		return 0, false
	}
}
