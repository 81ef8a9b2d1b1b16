package normalizer

import "strings"

// Specialties is the closed vocabulary the classifier and the direct mapper
// both assign from. Anything outside it stays unclassified.
var Specialties = []string{
	"ICU",
	"ER",
	"Med-Surg",
	"Telemetry",
	"Labor & Delivery",
	"Operating Room",
	"PACU",
	"Oncology",
	"Pediatrics",
	"Psychiatry",
	"Home Health",
	"Dialysis",
	"Case Management",
	"Long-Term Care",
}

// JobTypes and ShiftTypes are the closed vocabularies for the remaining
// classified fields.
var (
	JobTypes   = []string{"full-time", "part-time", "contract", "per-diem", "travel"}
	ShiftTypes = []string{"day", "night", "evening", "rotating", "weekend"}
)

var specialtyAliases = map[string]string{
	"intensive care":     "ICU",
	"icu":                "ICU",
	"critical care":      "ICU",
	"emergency":          "ER",
	"er":                 "ER",
	"ed":                 "ER",
	"med surg":           "Med-Surg",
	"med-surg":           "Med-Surg",
	"medical surgical":   "Med-Surg",
	"telemetry":          "Telemetry",
	"tele":               "Telemetry",
	"labor and delivery": "Labor & Delivery",
	"l&d":                "Labor & Delivery",
	"operating room":     "Operating Room",
	"or":                 "Operating Room",
	"surgery":            "Operating Room",
	"pacu":               "PACU",
	"recovery":           "PACU",
	"oncology":           "Oncology",
	"pediatrics":         "Pediatrics",
	"peds":               "Pediatrics",
	"psychiatry":         "Psychiatry",
	"psych":              "Psychiatry",
	"behavioral health":  "Psychiatry",
	"home health":        "Home Health",
	"dialysis":           "Dialysis",
	"case management":    "Case Management",
	"long term care":     "Long-Term Care",
	"ltc":                "Long-Term Care",
	"skilled nursing":    "Long-Term Care",
}

// inferSpecialty maps source department strings onto the closed vocabulary
// when the mapping is direct. Everything else is left for the classifier.
func inferSpecialty(department, title string) string {

	if specialty, ok := specialtyAliases[normalizeKey(department)]; ok {
		return specialty
	}

	loweredTitle := strings.ToLower(title)
	for alias, specialty := range specialtyAliases {
		// Short aliases like "or" and "ed" produce false matches in titles.
		if len(alias) < 4 {
			continue
		}
		if strings.Contains(loweredTitle, alias) {
			return specialty
		}
	}
	return ""
}

// IsKnownSpecialty reports whether a value belongs to the closed vocabulary.
func IsKnownSpecialty(value string) bool {
	for _, s := range Specialties {
		if s == value {
			return true
		}
	}
	return false
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
