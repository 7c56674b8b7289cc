package core

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the case-folded form of s. Catalog names, keywords and string
// comparisons all match through it.
func Fold(s string) string {
	// A Caser keeps state between calls, so one is created per use.
	return cases.Fold().String(s)
}

func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// CompareFold orders two strings case-insensitively.
func CompareFold(a, b string) int {
	return strings.Compare(Fold(a), Fold(b))
}
