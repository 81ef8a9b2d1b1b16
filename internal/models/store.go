package models

// UpsertOutcome reports what an identity-keyed write actually did.
type UpsertOutcome string

const (
	OutcomeInserted  UpsertOutcome = "inserted"
	OutcomeUpdated   UpsertOutcome = "updated"
	OutcomeUnchanged UpsertOutcome = "unchanged"
)

// UpsertResult carries the outcome together with the stored record as it
// exists after the write.
type UpsertResult struct {
	Outcome UpsertOutcome
	Record  JobRecord
}
