package textutil

import (
	"regexp"
	"strconv"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeName lowercases a label and strips everything that isn't a
// letter or digit, "Am. Hist" and "am hist" normalize the same.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	return nonAlnum.ReplaceAllString(name, "")
}

// MatchName reports whether the normalized name contains any of the
// (already normalized) matchers.
func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

var firstInt = regexp.MustCompile(`-?\d+`)
var firstFloat = regexp.MustCompile(`-?(?:\d+(?:\.\d+)?|\.\d+)`)

// ParseInt finds the first integer in s, ok is false when there is none.
func ParseInt(s string) (int, bool) {
	match := firstInt.FindString(s)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseFloat finds the first decimal number in s, ok is false when there is none.
func ParseFloat(s string) (float64, bool) {
	match := firstFloat.FindString(s)
	if match == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParsePercent parses "57", "57%" or "0.57" into a fraction in [0, 1].
// Whole numbers are always percentages, only a decimal without a percent
// sign is read as a fraction.
func ParsePercent(s string) (float64, bool) {
	match := firstFloat.FindString(s)
	if match == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(match, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	if strings.Contains(s, "%") || !strings.Contains(match, ".") {
		n = n / 100
	}
	if n > 1 {
		return 0, false
	}
	return n, true
}
