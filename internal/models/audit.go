package models

import "time"

// Change actions recorded in the audit trail.
const (
	ActionCreate    = "create"
	ActionUpdate    = "update"
	ActionDelete    = "delete"
	ActionDeleteAll = "delete_all"
)

// AuditEvent is one committed change, stored in MongoDB and published to RabbitMQ.
type AuditEvent struct {
	ID       string         `json:"id"                  bson:"_id"`
	Entity   string         `json:"entity"              bson:"entity"`
	EntityID string         `json:"entity_id,omitempty" bson:"entity_id,omitempty"`
	Action   string         `json:"action"              bson:"action"`
	Payload  map[string]any `json:"payload,omitempty"   bson:"payload,omitempty"`
	At       time.Time      `json:"at"                  bson:"at"`
}

// Snapshot describes one JSON dump stored in object storage.
type Snapshot struct {
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// SnapshotData is the body of a snapshot object.
type SnapshotData struct {
	TakenAt    time.Time   `json:"taken_at"`
	Users      []User      `json:"users"`
	Locations  []Location  `json:"locations"`
	TimeRanges []TimeRange `json:"time_ranges"`
	Statuses   []Status    `json:"statuses"`
	Rides      []Ride      `json:"rides"`
	Passengers []Passenger `json:"passengers"`
}
