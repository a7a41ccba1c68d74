package events

import "time"

// Envelope is the shared event shape published through the outbox relay.
// External collaborators (mail sender, disbursement gateway) consume it.
type Envelope struct {
	EventID        string    `json:"eventId"`
	EventType      string    `json:"eventType"`
	SourceService  string    `json:"sourceService"`
	TenantID       string    `json:"tenantId"`
	OccurredAtUTC  time.Time `json:"occurredAtUtc"`
	CorrelationID  string    `json:"correlationId"`
	EntityType     string    `json:"entityType"`
	EntityID       string    `json:"entityId"`
	PayloadVersion int       `json:"payloadVersion"`
	Payload        any       `json:"payload"`
}
