package normalizer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/medjoblist/pipeline/internal/models"
)

// Parsed hourly rates above this, or annual figures below the annual floor,
// are treated as misparses and dropped rather than stored.
const (
	hourlyCeiling = 500
	annualFloor   = 5000
)

type salary struct {
	min  float64
	max  float64
	kind models.SalaryType
}

var salaryAmountRegex = regexp.MustCompile(`\$?\s*(\d{1,3}(?:,\d{3})*(?:\.\d+)?)\s*([kK])?`)

// parseSalary extracts {min, max, type} from free-text salary strings such
// as "$32.50 - $45/hr", "$72,000 per year" or "65k-80k annually".
// Hourly vs annual is inferred from wording first, magnitude second.
func parseSalary(text string) (salary, bool) {

	text = strings.TrimSpace(text)
	if text == "" {
		return salary{}, false
	}

	var amounts []float64
	for _, match := range salaryAmountRegex.FindAllStringSubmatch(text, 2) {
		raw := strings.ReplaceAll(match[1], ",", "")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if match[2] != "" {
			value *= 1000
		}
		amounts = append(amounts, value)
	}
	if len(amounts) == 0 {
		return salary{}, false
	}

	s := salary{min: amounts[0], max: amounts[0]}
	if len(amounts) > 1 && amounts[1] >= amounts[0] {
		s.max = amounts[1]
	}

	s.kind = detectSalaryType(text, s.max)

	if s.kind == models.SalaryHourly && s.max > hourlyCeiling {
		return salary{}, false
	}
	if s.kind == models.SalaryAnnual && s.max < annualFloor {
		return salary{}, false
	}

	return s, true
}

var (
	hourlyHints = []string{"/hr", "/hour", "per hour", "hourly", "an hour"}
	annualHints = []string{"/yr", "/year", "per year", "annual", "a year", "yearly"}
)

func detectSalaryType(text string, maxAmount float64) models.SalaryType {
	lowered := strings.ToLower(text)

	for _, hint := range hourlyHints {
		if strings.Contains(lowered, hint) {
			return models.SalaryHourly
		}
	}
	for _, hint := range annualHints {
		if strings.Contains(lowered, hint) {
			return models.SalaryAnnual
		}
	}

	// No wording to go on: a figure this small can only be an hourly rate.
	if maxAmount <= hourlyCeiling {
		return models.SalaryHourly
	}
	return models.SalaryAnnual
}
