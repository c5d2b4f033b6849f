package models

import "strings"

// GradeRaw is the ungraded tier.
const GradeRaw = "RAW"

// StandardGrades is the fixed ordered grade ladder used for all-grades
// estimates: top grade, mid tiers, raw.
var StandardGrades = []string{"PSA 10", "PSA 9", "PSA 8", "PSA 7", GradeRaw}

// knownGrades is the closed grade vocabulary. Multiplier table files are
// validated against it at load time; unknown keys are rejected there
// instead of silently pricing at a default.
var knownGrades = map[string]struct{}{
	"PSA 10": {}, "PSA 9": {}, "PSA 8": {}, "PSA 7": {}, "PSA 6": {},
	"PSA 5": {}, "PSA 4": {}, "PSA 3": {}, "PSA 2": {}, "PSA 1": {},
	"BGS 10": {}, "BGS 9.5": {}, "BGS 9": {}, "BGS 8.5": {}, "BGS 8": {},
	"SGC 10": {}, "SGC 9.5": {}, "SGC 9": {}, "SGC 8": {},
	"CGC 10": {}, "CGC 9.5": {}, "CGC 9": {},
	"RAW": {}, "RAW MINT": {}, "RAW NM": {}, "RAW EX": {}, "RAW VG": {},
}

// KnownGrade reports whether a label is in the closed grade vocabulary.
func KnownGrade(grade string) bool {
	_, ok := knownGrades[grade]
	return ok
}

// NormalizeGrade maps caller-supplied grade text onto the canonical grade
// vocabulary: "PSA_10" and "10" and "gem mint" all become "PSA 10";
// "ungraded" becomes "RAW". Unrecognized labels pass through unchanged
// (uppercased) and resolve to a neutral multiplier downstream rather than
// erroring.
func NormalizeGrade(grade string) string {
	g := strings.ToUpper(strings.TrimSpace(grade))
	g = strings.ReplaceAll(g, "_", " ")
	g = strings.ReplaceAll(g, "-", " ")
	g = strings.Join(strings.Fields(g), " ")
	if g == "" {
		return GradeRaw
	}

	switch g {
	case "10", "9", "8", "7", "6", "5", "4", "3", "2", "1":
		return "PSA " + g
	case "GEM MINT", "GEM MT":
		return "PSA 10"
	case "MINT":
		return "PSA 9"
	case "NM MT":
		return "PSA 8"
	case "NM", "NEAR MINT":
		return "PSA 7"
	case "UNGRADED", "NONE":
		return GradeRaw
	}
	return g
}
