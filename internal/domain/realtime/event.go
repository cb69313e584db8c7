package realtime

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// ParseEventType accepts both TG_OP spelling (INSERT) and the lower-case form.
func ParseEventType(value string) (EventType, error) {
	switch EventType(strings.ToLower(strings.TrimSpace(value))) {
	case EventInsert:
		return EventInsert, nil
	case EventUpdate:
		return EventUpdate, nil
	case EventDelete:
		return EventDelete, nil
	default:
		return "", fmt.Errorf("unknown event type %q", value)
	}
}

// Event is one committed row change.
type Event struct {
	Table           string
	Type            EventType
	Record          json.RawMessage
	OldRecord       json.RawMessage
	CommitTimestamp time.Time
}

type wirePayload struct {
	Table           string          `json:"table"`
	Type            string          `json:"type"`
	Record          json.RawMessage `json:"record"`
	OldRecord       json.RawMessage `json:"old_record"`
	CommitTimestamp time.Time       `json:"commit_timestamp"`
}

// DecodeEvent parses the pg_notify payload written by the change trigger.
func DecodeEvent(payload []byte) (Event, error) {
	var wire wirePayload
	if err := json.Unmarshal(payload, &wire); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if wire.Table == "" {
		return Event{}, fmt.Errorf("decode event: missing table")
	}
	eventType, err := ParseEventType(wire.Type)
	if err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return Event{
		Table:           wire.Table,
		Type:            eventType,
		Record:          nullAsEmpty(wire.Record),
		OldRecord:       nullAsEmpty(wire.OldRecord),
		CommitTimestamp: wire.CommitTimestamp,
	}, nil
}

// DecodeRecord unmarshals the new row image into dst.
func (e Event) DecodeRecord(dst any) error {
	if len(e.Record) == 0 {
		return fmt.Errorf("event %s on %s has no record", e.Type, e.Table)
	}
	return json.Unmarshal(e.Record, dst)
}

func nullAsEmpty(raw json.RawMessage) json.RawMessage {
	if string(raw) == "null" {
		return nil
	}
	return raw
}

// Filter selects events by table and, optionally, by type. An empty Types
// matches every type.
type Filter struct {
	Table string
	Types []EventType
}

func (f Filter) Matches(event Event) bool {
	if f.Table != "" && f.Table != event.Table {
		return false
	}
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if t == event.Type {
			return true
		}
	}
	return false
}
