package notifier

// Notifier is the outbound alert collaborator. Implementations must be safe
// to fail: the pipeline logs a failed send and carries on.
type Notifier interface {
	SendAlert(subject string, body string) error
}
