package domain

import (
	"errors"
	"strconv"
	"strings"
)

// MinScaleValues is the smallest number of tokens a usable scale can have.
const MinScaleValues = 2

// DefaultScaleName is used whenever a stored scale name is unknown.
const DefaultScaleName = "modified_fibonacci"

var ErrScaleTooSmall = errors.New("scale needs at least 2 values")

// PredefinedScales maps scale names to their ordered vote tokens.
var PredefinedScales = map[string][]string{
	"fibonacci":          {"0", "1", "2", "3", "5", "8", "13", "21", "34", "55", "89", "?", "☕"},
	"modified_fibonacci": {"0", "0.5", "1", "2", "3", "5", "8", "13", "20", "40", "100", "?", "☕"},
	"powers_of_2":        {"0", "1", "2", "4", "8", "16", "32", "64", "?", "☕"},
	"t_shirt":            {"XXS", "XS", "S", "M", "L", "XL", "XXL", "?", "☕"},
	"linear":             {"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "?", "☕"},
}

// ScaleNames returns the available predefined scale names.
func ScaleNames() []string {
	names := make([]string, 0, len(PredefinedScales))
	for name := range PredefinedScales {
		names = append(names, name)
	}
	return names
}

// Scale is an ordered set of permitted vote tokens, predefined or custom.
type Scale struct {
	Name   string
	Values []string
}

// PredefinedScale looks up a scale by name, falling back to the default
// modified_fibonacci when the name is unknown.
func PredefinedScale(name string) Scale {
	values, ok := PredefinedScales[name]
	if !ok {
		name = DefaultScaleName
		values = PredefinedScales[name]
	}
	return Scale{Name: name, Values: values}
}

// NewCustomScale builds a custom scale from raw values. Blank entries are
// trimmed away; fewer than two surviving values is an error.
func NewCustomScale(values []string) (Scale, error) {
	clean := CleanScaleValues(values)
	if len(clean) < MinScaleValues {
		return Scale{}, ErrScaleTooSmall
	}
	return Scale{Name: "custom", Values: clean}, nil
}

// CleanScaleValues trims every entry and drops the blank ones.
func CleanScaleValues(values []string) []string {
	clean := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		clean = append(clean, v)
	}
	return clean
}

// Contains reports whether the token is a member of the scale.
func (s Scale) Contains(token string) bool {
	for _, v := range s.Values {
		if v == token {
			return true
		}
	}
	return false
}

// Round returns the numeric token closest to value by absolute difference.
// Ties resolve to the first minimal token in declared order. The second
// return is false when the scale has no numeric tokens at all.
func (s Scale) Round(value float64) (string, bool) {
	best := ""
	bestDist := 0.0
	found := false
	for _, token := range s.Values {
		n, err := strconv.ParseFloat(token, 64)
		if err != nil {
			continue
		}
		dist := n - value
		if dist < 0 {
			dist = -dist
		}
		if !found || dist < bestDist {
			best = token
			bestDist = dist
			found = true
		}
	}
	return best, found
}
