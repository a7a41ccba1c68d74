package outbox

const (
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusFailed    = "failed"
)

// Message is an outbox row persisted inside the same DB transaction as the
// state change that produced it. The worker relay reads pending rows and
// publishes them to the message bus.
type Message struct {
	ID         string
	TenantID   string
	EventType  string
	Payload    []byte
	Status     string
	RetryCount int
}
