package services

import (
	"regexp"
	"strconv"
	"strings"
)

// amountPattern accepts strings like "200 g", "1.5 cups" or a bare "2".
var amountPattern = regexp.MustCompile(`^\d+(\.\d+)?\s*\S*$`)

var nonAlnumPattern = regexp.MustCompile(`[^a-z0-9_]`)

// NormalizeIngredientKey produces the stable lookup key for an ingredient
// name: lowercase, spaces to underscores, everything else alphanumeric.
func NormalizeIngredientKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, " ", "_")
	return nonAlnumPattern.ReplaceAllString(key, "")
}

// ParsedAmount is an amount string split into its numeric value and unit.
type ParsedAmount struct {
	Value float64
	Unit  string
}

// ParseAmount splits an amount string like "200 g" into (200, "g"). The
// second return is false when the string does not follow the numeric-prefix
// shape and must be kept verbatim.
func ParseAmount(s string) (ParsedAmount, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !amountPattern.MatchString(s) {
		return ParsedAmount{}, false
	}
	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	value, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return ParsedAmount{}, false
	}
	return ParsedAmount{Value: value, Unit: strings.TrimSpace(s[i:])}, true
}

// FormatAmount renders a merged amount back into display form, trimming to
// at most one decimal place.
func FormatAmount(value float64, unit string) string {
	s := strconv.FormatFloat(value, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	if unit == "" {
		return s
	}
	return s + " " + unit
}
