package classifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/medjoblist/pipeline/internal/models"
	"github.com/medjoblist/pipeline/internal/normalizer"
)

func buildPrompt(job models.JobRecord) string {

	var b strings.Builder
	b.WriteString("You are classifying a healthcare job posting.\n")
	fmt.Fprintf(&b, "Title: %s\n", job.Title)
	fmt.Fprintf(&b, "Location: %s, %s\n", job.City, job.State)
	if job.SalaryMax > 0 {
		fmt.Fprintf(&b, "Salary: %.2f-%.2f %s\n", job.SalaryMin, job.SalaryMax, job.SalaryType)
	}
	fmt.Fprintf(&b, "Allowed specialty values: %s\n", strings.Join(normalizer.Specialties, ", "))
	fmt.Fprintf(&b, "Allowed job_type values: %s\n", strings.Join(normalizer.JobTypes, ", "))
	fmt.Fprintf(&b, "Allowed shift_type values: %s\n", strings.Join(normalizer.ShiftTypes, ", "))
	b.WriteString("Respond with a single JSON object with keys specialty, job_type and shift_type, " +
		"using only the allowed values. Use an empty string when a field cannot be determined. " +
		"No prose, no markdown.")
	return b.String()
}

type classificationResponse struct {
	Specialty string `json:"specialty"`
	JobType   string `json:"job_type"`
	ShiftType string `json:"shift_type"`
}

// parseResponse decodes the model reply. A missing or out-of-vocabulary
// specialty is a failure: activation requires one.
func parseResponse(response string) (models.Classification, error) {

	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed classificationResponse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return models.Classification{}, fmt.Errorf("malformed classification response %q: %w", response, err)
	}

	if !normalizer.IsKnownSpecialty(parsed.Specialty) {
		return models.Classification{}, fmt.Errorf("specialty %q is not in the vocabulary", parsed.Specialty)
	}

	return models.Classification{
		Specialty: parsed.Specialty,
		JobType:   normalizeVocab(parsed.JobType, normalizer.JobTypes),
		ShiftType: normalizeVocab(parsed.ShiftType, normalizer.ShiftTypes),
	}, nil
}

// normalizeVocab keeps a value only when it belongs to the vocabulary;
// unlike specialty, these fields may stay empty.
func normalizeVocab(value string, vocabulary []string) string {
	lowered := strings.ToLower(strings.TrimSpace(value))
	for _, allowed := range vocabulary {
		if lowered == allowed {
			return allowed
		}
	}
	return ""
}
