package eval

import (
	"reflect"
	"strings"
	"time"

	"canvass-hq/canvass/pkg/logic/ast"
)

// applyOperator dispatches one comparison. Any conversion failure yields
// false, never an error.
func applyOperator(op ast.Operator, actual, literal any) bool {
	switch op {
	case ast.OperatorEquals:
		return looseEqual(actual, literal)

	case ast.OperatorNotEquals:
		return !looseEqual(actual, literal)

	case ast.OperatorGreaterThan:
		cmp, ok := compareOrdered(actual, literal)
		return ok && cmp > 0

	case ast.OperatorLessThan:
		cmp, ok := compareOrdered(actual, literal)
		return ok && cmp < 0

	case ast.OperatorGreaterEquals:
		cmp, ok := compareOrdered(actual, literal)
		return ok && cmp >= 0

	case ast.OperatorLessEquals:
		cmp, ok := compareOrdered(actual, literal)
		return ok && cmp <= 0

	case ast.OperatorContains:
		return evalContains(actual, literal)

	case ast.OperatorNotContains:
		return !evalContains(actual, literal)

	case ast.OperatorStartsWith:
		actualStr, ok1 := actual.(string)
		literalStr, ok2 := literal.(string)
		return ok1 && ok2 && strings.HasPrefix(actualStr, literalStr)

	case ast.OperatorIn:
		return evalIn(actual, literal)

	case ast.OperatorNotIn:
		return !evalIn(actual, literal)

	default:
		return false
	}
}

// looseEqual compares two values the way answers compare to literals:
// numerically when both sides are numbers, case-insensitively when both
// are strings, and by direct comparison otherwise. Booleans additionally
// match their string spellings since choice answers often arrive as text.
func looseEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}

	actualNum, actualOK := toFloat64(actual)
	expectedNum, expectedOK := toFloat64(expected)
	if actualOK && expectedOK {
		return actualNum == expectedNum
	}

	actualStr, actualIsStr := actual.(string)
	expectedStr, expectedIsStr := expected.(string)
	if actualIsStr && expectedIsStr {
		return strings.EqualFold(actualStr, expectedStr)
	}

	if actualBool, ok := actual.(bool); ok {
		if expectedBool, ok := expected.(bool); ok {
			return actualBool == expectedBool
		}
		if expectedIsStr {
			return strings.EqualFold(expectedStr, boolString(actualBool))
		}
	}

	return strictEqual(actual, expected)
}

// strictEqual is the equality fallback for values with no numeric,
// string, or boolean interpretation. Interface comparison panics when
// both sides hold the same non-comparable dynamic type (slices, maps),
// so those compare as false instead.
func strictEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == expected
	}
	if !reflect.TypeOf(actual).Comparable() || !reflect.TypeOf(expected).Comparable() {
		return false
	}
	return actual == expected
}

// compareOrdered orders two values numerically, or chronologically when
// both parse as dates. The boolean result is false if neither
// interpretation applies.
func compareOrdered(actual, expected any) (int, bool) {
	actualNum, actualOK := toFloat64(actual)
	expectedNum, expectedOK := toFloat64(expected)
	if actualOK && expectedOK {
		switch {
		case actualNum < expectedNum:
			return -1, true
		case actualNum > expectedNum:
			return 1, true
		default:
			return 0, true
		}
	}

	actualTime, actualOK := toTime(actual)
	expectedTime, expectedOK := toTime(expected)
	if actualOK && expectedOK {
		switch {
		case actualTime.Before(expectedTime):
			return -1, true
		case actualTime.After(expectedTime):
			return 1, true
		default:
			return 0, true
		}
	}

	return 0, false
}

// evalContains checks substring containment for string answers and element
// membership for multi-choice answers.
func evalContains(actual, literal any) bool {
	literalStr, ok := literal.(string)
	if !ok {
		return false
	}

	switch val := actual.(type) {
	case string:
		return strings.Contains(val, literalStr)
	case []any:
		for _, elem := range val {
			if looseEqual(elem, literalStr) {
				return true
			}
		}
	case []string:
		for _, elem := range val {
			if looseEqual(elem, literalStr) {
				return true
			}
		}
	}
	return false
}

// evalIn checks membership of the answer in a literal set.
func evalIn(actual, literal any) bool {
	set, ok := literal.([]any)
	if !ok {
		return false
	}
	for _, elem := range set {
		if memberEqual(actual, elem) {
			return true
		}
	}
	return false
}

// memberEqual is the equality used for set membership: numeric-aware but
// case-sensitive for strings, matching exact-match semantics of the
// in-set operator.
func memberEqual(actual, expected any) bool {
	actualNum, actualOK := toFloat64(actual)
	expectedNum, expectedOK := toFloat64(expected)
	if actualOK && expectedOK {
		return actualNum == expectedNum
	}
	return strictEqual(actual, expected)
}

// toFloat64 converts numeric answer and literal representations to
// float64. YAML and JSON decoding produce int and float64; answers merged
// from clients may carry the other numeric widths.
func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	}
	return 0, false
}

// dateLayouts are the accepted date representations for ordering
// comparisons on date fields.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// toTime parses a value as a date.
func toTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, val); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// boolString spells a boolean the way choice answers do.
func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
