// Package audit records committed changes and fans them out to the
// configured sinks (MongoDB, RabbitMQ).
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wayfare/backend/internal/logger"
	"github.com/wayfare/backend/internal/models"
)

// Recorder accepts one change event.
type Recorder interface {
	Record(ctx context.Context, ev models.AuditEvent) error
}

// NewEvent builds an event for entity/id. payload is flattened to a JSON object,
// so fields hidden from JSON (passwords) never reach a sink.
func NewEvent(entity string, id any, action string, payload any) models.AuditEvent {
	ev := models.AuditEvent{
		ID:     uuid.NewString(),
		Entity: entity,
		Action: action,
		At:     time.Now().UTC(),
	}
	if id != nil {
		ev.EntityID = fmt.Sprint(id)
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			var m map[string]any
			if json.Unmarshal(raw, &m) == nil {
				ev.Payload = m
			}
		}
	}
	return ev
}

// Fanout delivers each event to every sink. Sink failures are logged and
// never returned.
type Fanout struct {
	sinks []Recorder
	log   logger.Logger
}

// Multi returns a Fanout over the non-nil sinks.
func Multi(log logger.Logger, sinks ...Recorder) *Fanout {
	f := &Fanout{log: log.Action("audit")}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

func (f *Fanout) Record(ctx context.Context, ev models.AuditEvent) error {
	for _, s := range f.sinks {
		if err := s.Record(ctx, ev); err != nil {
			f.log.Error("audit sink failed", err, "entity", ev.Entity, "action", ev.Action, "event_id", ev.ID)
		}
	}
	return nil
}

// Len reports how many sinks are attached.
func (f *Fanout) Len() int { return len(f.sinks) }

type discard struct{}

func (discard) Record(context.Context, models.AuditEvent) error { return nil }

// Discard drops every event.
func Discard() Recorder { return discard{} }
