package geocode

import (
	"regexp"
	"strings"
)

// A Cleaner is one pure address-string transformation. It returns the
// transformed string and whether anything changed. Cleaners are applied in
// a fixed order; keeping them pure keeps the heuristics testable without
// the network or the database.
type Cleaner func(string) (string, bool)

var (
	reParenthetical = regexp.MustCompile(`\([^)]*\)`)
	reLetterDigit   = regexp.MustCompile(`(\p{L})(\d)`)
	reSpaces        = regexp.MustCompile(`\s+`)
	// leading tokens up to and including the first house number, with an
	// optional orientation fraction ("101/45")
	reLeadingNumber = regexp.MustCompile(`^(\P{N}*?\d+[a-zA-Z]?(?:/\d+[a-zA-Z]?)?)`)
)

// Noise descriptors that never help the geocoder: building, floor,
// apartment and lodging words seen in the registry's street fields.
var noiseWords = map[string]bool{
	"hotel":    true,
	"penzion":  true,
	"ubytovna": true,
	"azylový":  true,
	"dům":      true,
	"vchod":    true,
	"patro":    true,
	"podlaží":  true,
	"byt":      true,
	"budova":   true,
	"blok":     true,
	"pokoj":    true,
}

// StripParentheticals removes "(vchod B)" style annotations.
func StripParentheticals(s string) (string, bool) {
	out := reParenthetical.ReplaceAllString(s, " ")
	return out, out != s
}

// StripNoiseWords drops known building/floor/lodging descriptor tokens.
func StripNoiseWords(s string) (string, bool) {
	fields := strings.Fields(s)
	kept := fields[:0]
	changed := false
	for _, f := range fields {
		if noiseWords[strings.ToLower(strings.Trim(f, ".,"))] {
			changed = true
			continue
		}
		kept = append(kept, f)
	}
	if !changed {
		return s, false
	}
	return strings.Join(kept, " "), true
}

// InsertNumberSpace fixes inputs like "Hrdinů278" where the house number
// was typed directly after the street name.
func InsertNumberSpace(s string) (string, bool) {
	out := reLetterDigit.ReplaceAllString(s, "$1 $2")
	return out, out != s
}

// CollapseWhitespace squeezes runs of whitespace and trims the ends.
func CollapseWhitespace(s string) (string, bool) {
	out := strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
	return out, out != s
}

// cleaners in application order; CollapseWhitespace runs last so the other
// transforms do not need to tidy up after themselves.
var cleaners = []Cleaner{
	StripParentheticals,
	StripNoiseWords,
	InsertNumberSpace,
	CollapseWhitespace,
}

// CleanStreet applies all cleaners in order.
func CleanStreet(street string) string {
	s := street
	for _, clean := range cleaners {
		s, _ = clean(s)
	}
	return s
}

// MinimalStreet truncates a cleaned street to its leading tokens up
// through the first house number ("Husova 101/45 Hotel Cazanova" ->
// "Husova 101/45"). Returns the input unchanged when no number is present.
func MinimalStreet(street string) string {
	m := reLeadingNumber.FindStringSubmatch(street)
	if m == nil {
		return street
	}
	return strings.TrimSpace(m[1])
}

// JoinAddress builds the query string from the street and city components.
func JoinAddress(street, city string) string {
	street = strings.TrimSpace(street)
	city = strings.TrimSpace(city)
	switch {
	case street == "":
		return city
	case city == "":
		return street
	default:
		return street + ", " + city
	}
}

// BuildVariants produces the candidate address strings to try against the
// geocoder, in priority order: the literal address, a cleaned form and a
// minimal form. Duplicates are removed, so at most 3 distinct variants are
// returned; an empty address yields none.
func BuildVariants(street, city string) []string {
	literal := JoinAddress(street, city)
	if literal == "" {
		return nil
	}

	cleaned := JoinAddress(CleanStreet(street), strings.TrimSpace(city))
	minimal := JoinAddress(MinimalStreet(CleanStreet(street)), strings.TrimSpace(city))

	variants := make([]string, 0, 3)
	seen := make(map[string]bool, 3)
	for _, v := range []string{literal, cleaned, minimal} {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		variants = append(variants, v)
	}
	return variants
}
