package normalizer

import (
	"testing"

	"github.com/medjoblist/pipeline/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestParseSalary(t *testing.T) {

	cases := []struct {
		text string
		ok   bool
		min  float64
		max  float64
		kind models.SalaryType
	}{
		{"$32.50 - $45/hr", true, 32.5, 45, models.SalaryHourly},
		{"$72,000 per year", true, 72000, 72000, models.SalaryAnnual},
		{"65k-80k annually", true, 65000, 80000, models.SalaryAnnual},
		{"$41.75 hourly", true, 41.75, 41.75, models.SalaryHourly},
		{"up to $95,000 a year", true, 95000, 95000, models.SalaryAnnual},
		// No wording: magnitude decides.
		{"$48", true, 48, 48, models.SalaryHourly},
		{"$110,000", true, 110000, 110000, models.SalaryAnnual},
		// Misparses are dropped, not stored.
		{"$900/hr", false, 0, 0, ""},
		{"$1,200 per year", false, 0, 0, ""},
		{"competitive pay", false, 0, 0, ""},
		{"", false, 0, 0, ""},
	}

	for _, c := range cases {
		parsed, ok := parseSalary(c.text)
		assert.Equal(t, c.ok, ok, c.text)
		if !c.ok {
			continue
		}
		assert.Equal(t, c.min, parsed.min, c.text)
		assert.Equal(t, c.max, parsed.max, c.text)
		assert.Equal(t, c.kind, parsed.kind, c.text)
	}
}

func TestInferSpecialty(t *testing.T) {

	assert.Equal(t, "ICU", inferSpecialty("Critical Care", ""))
	assert.Equal(t, "ER", inferSpecialty("ED", ""))
	assert.Equal(t, "Telemetry", inferSpecialty("", "Telemetry Nurse Nights"))
	// "or" inside a longer title must not map to Operating Room.
	assert.Equal(t, "", inferSpecialty("", "Coordinator of Records"))
	assert.Equal(t, "", inferSpecialty("Administration", "Staffing Coordinator"))
}

func TestIsKnownSpecialty(t *testing.T) {
	assert.True(t, IsKnownSpecialty("Med-Surg"))
	assert.False(t, IsKnownSpecialty("Underwater Basket Weaving"))
}
