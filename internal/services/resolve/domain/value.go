// Package domain holds the resolution result types and the ports the
// resolve service is wired through
package domain

import "equilex/internal/core/daterange"

// Method tags how a value was resolved
type Method string

// Resolution methods, from strongest to weakest evidence
const (
	MethodExact       Method = "exact"
	MethodFuzzy       Method = "fuzzy"
	MethodPattern     Method = "pattern"
	MethodLookupExact Method = "lookup-exact"
	MethodLookupFuzzy Method = "lookup-fuzzy"
	MethodNone        Method = "none"
)

// Metadata carries free-form provenance (matched key, raw score, label)
type Metadata map[string]any

// Value is the result of one resolution. Exactly one of Scalar, List or
// Range is set for resolved values; unresolved table values echo the
// original input in Scalar, unresolved dates leave Range nil
type Value struct {
	Original   string           `json:"original"`
	Method     Method           `json:"method"`
	Confidence float64          `json:"confidence"`
	Scalar     string           `json:"scalar,omitempty"`
	List       []string         `json:"list,omitempty"`
	Range      *daterange.Range `json:"range,omitempty"`
	Metadata   Metadata         `json:"metadata,omitempty"`
}

// Normalized returns whichever payload is populated; the original string
// for method none on non-date categories
func (v Value) Normalized() any {
	switch {
	case v.Range != nil:
		return v.Range
	case v.List != nil:
		return v.List
	default:
		return v.Scalar
	}
}

// Resolved reports whether any strategy accepted the input
func (v Value) Resolved() bool { return v.Method != MethodNone }

// ScalarValue builds a resolved single-value result
func ScalarValue(original, scalar string, method Method, confidence float64, md Metadata) Value {
	return Value{Original: original, Method: method, Confidence: confidence, Scalar: scalar, Metadata: md}
}

// ListValue builds a resolved multi-representation result (countries)
func ListValue(original string, list []string, method Method, confidence float64, md Metadata) Value {
	return Value{Original: original, Method: method, Confidence: confidence, List: list, Metadata: md}
}

// RangeValue builds a resolved date-range result
func RangeValue(original string, r daterange.Range, confidence float64, md Metadata) Value {
	return Value{Original: original, Method: MethodPattern, Confidence: confidence, Range: &r, Metadata: md}
}

// NoneValue is the unresolved outcome for table categories: confidence 0,
// normalized echoes the input so callers can pass it through at their own
// risk
func NoneValue(original string) Value {
	return Value{Original: original, Method: MethodNone, Scalar: original}
}

// NoneRange is the unresolved outcome for date phrases; a range cannot
// hold free text so the payload stays nil
func NoneRange(original string) Value {
	return Value{Original: original, Method: MethodNone}
}
