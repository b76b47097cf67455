package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// honorifics that faculty names arrive with ("dr. sharma", "Prof Rao")
// and that would skew fuzzy scoring against the roster.
var honorifics = map[string]bool{
	"dr":        true,
	"prof":      true,
	"professor": true,
	"mr":        true,
	"ms":        true,
	"mrs":       true,
}

// CleanupString normalizes a free-form person name for roster matching:
// trims spaces, drops a leading honorific, title-cases the rest and
// removes a trailing period.
func CleanupString(s string) string {
	s = strings.TrimSpace(s)
	if first, rest, ok := strings.Cut(s, " "); ok {
		if honorifics[strings.ToLower(strings.TrimSuffix(first, "."))] {
			s = strings.TrimSpace(rest)
		}
	}
	s = cases.Title(language.English).String(s)
	s = strings.TrimSuffix(s, ".")
	return s
}
