// Package event implements the Oneiros event taxonomy: an envelope with
// an RFC3339 timestamp and a tagged {type, data} payload, where type is
// the stable kebab-case wire discriminant pinned by spec §6/§8.
package event

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type is the kebab-case wire discriminant. Renaming a Go identifier
// never changes this string; changing this string is a breaking change
// to stored data (spec §4.8).
type Type string

// The authoritative discriminant list from spec §6. Any change here is
// a compatibility break.
const (
	TenantCreated Type = "tenant-created"
	ActorCreated  Type = "actor-created"
	BrainCreated  Type = "brain-created"
	TicketIssued  Type = "ticket-issued"

	AgentCreated Type = "agent-created"
	AgentUpdated Type = "agent-updated"
	AgentRemoved Type = "agent-removed"

	CognitionAdded Type = "cognition-added"
	MemoryAdded    Type = "memory-added"

	StorageSet     Type = "storage-set"
	StorageRemoved Type = "storage-removed"

	PersonaSet     Type = "persona-set"
	PersonaRemoved Type = "persona-removed"
	TextureSet     Type = "texture-set"
	TextureRemoved Type = "texture-removed"
	LevelSet       Type = "level-set"
	LevelRemoved   Type = "level-removed"
	SensationSet   Type = "sensation-set"
	SensationRemoved Type = "sensation-removed"
	NatureSet      Type = "nature-set"
	NatureRemoved  Type = "nature-removed"

	ConnectionCreated Type = "connection-created"
	ConnectionRemoved Type = "connection-removed"

	ExperienceCreated            Type = "experience-created"
	ExperienceRefAdded           Type = "experience-ref-added"
	ExperienceDescriptionUpdated Type = "experience-description-updated"

	Woke     Type = "woke"
	Slept    Type = "slept"
	Emerged  Type = "emerged"
	Receded  Type = "receded"

	DreamBegun    Type = "dream-begun"
	DreamComplete Type = "dream-complete"

	IntrospectionBegun    Type = "introspection-begun"
	IntrospectionComplete Type = "introspection-complete"
	ReflectionBegun       Type = "reflection-begun"
	ReflectionComplete    Type = "reflection-complete"

	Sensed Type = "sensed"
)

// AllTypes lists every discriminant, used by the stability tests to
// check that an unknown type was not silently introduced.
var AllTypes = []Type{
	TenantCreated, ActorCreated, BrainCreated, TicketIssued,
	AgentCreated, AgentUpdated, AgentRemoved,
	CognitionAdded, MemoryAdded,
	StorageSet, StorageRemoved,
	PersonaSet, PersonaRemoved,
	TextureSet, TextureRemoved,
	LevelSet, LevelRemoved,
	SensationSet, SensationRemoved,
	NatureSet, NatureRemoved,
	ConnectionCreated, ConnectionRemoved,
	ExperienceCreated, ExperienceRefAdded, ExperienceDescriptionUpdated,
	Woke, Slept, Emerged, Receded,
	DreamBegun, DreamComplete,
	IntrospectionBegun, IntrospectionComplete, ReflectionBegun, ReflectionComplete,
	Sensed,
}

// Envelope is the stored shape of an event row's payload:
// {"type": "<kebab-case>", "data": <payload-object>}.
type Envelope struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Event is the full record: envelope plus the timestamp assigned at
// append time.
type Event struct {
	Timestamp time.Time
	Envelope  Envelope
}

// New builds an Event by encoding a concrete payload struct under the
// given type discriminant.
func New(t Type, timestamp time.Time, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("event: encode %s payload: %w", t, err)
	}
	return Event{Timestamp: timestamp, Envelope: Envelope{Type: t, Data: raw}}, nil
}

// Decode unmarshals the envelope's data into dst, which must be a
// pointer to the concrete payload type for Envelope.Type.
func (e Event) Decode(dst any) error {
	if err := json.Unmarshal(e.Envelope.Data, dst); err != nil {
		return fmt.Errorf("event: decode %s payload: %w", e.Envelope.Type, err)
	}
	return nil
}

// wireRow mirrors the storage form documented in spec §6:
// event_row = { rowid, timestamp: RFC3339-utc, data: text }.
type wireRow struct {
	Timestamp string `json:"timestamp"`
	Data      string `json:"data"`
}

// MarshalStored renders the event as the text blob stored in the
// events table's data column (the envelope JSON) and the RFC3339
// timestamp string stored alongside it.
func (e Event) MarshalStored() (timestamp string, data string, err error) {
	envelopeJSON, err := json.Marshal(e.Envelope)
	if err != nil {
		return "", "", fmt.Errorf("event: encode envelope: %w", err)
	}
	return e.Timestamp.UTC().Format(time.RFC3339Nano), string(envelopeJSON), nil
}

// ParseStored is the inverse of MarshalStored, used when reading rows
// back out of the events table.
func ParseStored(timestamp, data string) (Event, error) {
	ts, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		ts, err = time.Parse(time.RFC3339, timestamp)
		if err != nil {
			return Event{}, fmt.Errorf("event: parse timestamp %q: %w", timestamp, err)
		}
	}
	var env Envelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return Event{}, fmt.Errorf("event: parse envelope: %w", err)
	}
	return Event{Timestamp: ts, Envelope: env}, nil
}
