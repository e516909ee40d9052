package event

// Payload shapes for each event type. Projections and the replay
// pipeline decode into these; handlers (out of core scope) encode them.
// Field names intentionally mirror the legacy/JSON shape described in
// spec §3/§4.7 (snake_case-derived Go names, kebab-case wire strings
// live only in Type).

type TenantCreatedPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ActorCreatedPayload struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
}

type BrainCreatedPayload struct {
	ID      string `json:"id"`
	ActorID string `json:"actor_id"`
	Name    string `json:"name"`
}

type TicketIssuedPayload struct {
	ID        string `json:"id"`
	BrainID   string `json:"brain_id"`
	ExpiresAt string `json:"expires_at"`
}

type AgentCreatedPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Persona     string `json:"persona"`
	Description string `json:"description"`
	Prompt      string `json:"prompt"`
}

type AgentUpdatedPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Persona     string `json:"persona"`
	Description string `json:"description"`
	Prompt      string `json:"prompt"`
}

type AgentRemovedPayload struct {
	Name string `json:"name"`
}

type CognitionAddedPayload struct {
	ID        string `json:"id"`
	AgentID   string `json:"agent_id"`
	Texture   string `json:"texture"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type MemoryAddedPayload struct {
	ID        string `json:"id"`
	AgentID   string `json:"agent_id"`
	Level     string `json:"level"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type StorageSetPayload struct {
	Key         string `json:"key"`
	Description string `json:"description"`
	Hash        string `json:"hash"`
}

type StorageRemovedPayload struct {
	Key string `json:"key"`
}

// VocabSetPayload covers persona-set/texture-set/level-set/
// sensation-set/nature-set — all share the (name, description) shape.
type VocabSetPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// VocabRemovedPayload covers the matching *-removed events.
type VocabRemovedPayload struct {
	Name string `json:"name"`
}

// RawRef mirrors the structural (JSON) Ref shape as stored in
// experience_ref rows: {"version":0,"resource":{"kind":...}}.
type RawRef struct {
	Version  int    `json:"version"`
	Resource RawRes `json:"resource"`
}

type RawRes struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type ConnectionCreatedPayload struct {
	ID        string `json:"id"`
	Nature    string `json:"nature"`
	FromLink  string `json:"from_link"`
	ToLink    string `json:"to_link"`
	CreatedAt string `json:"created_at"`
}

type ConnectionRemovedPayload struct {
	ID string `json:"id"`
}

type ExperienceCreatedPayload struct {
	ID          string `json:"id"`
	AgentID     string `json:"agent_id"`
	Sensation   string `json:"sensation"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// ExperienceRefAddedPayload decodes record_ref only as a structural Ref
// ({version, resource{kind, id, name}}); a flat legacy record_ref with
// top-level id/kind/role fields decodes with an empty resource, so its
// id is lost. CreatedAt is optional pre-rewrite and backfilled from the
// envelope timestamp when absent.
type ExperienceRefAddedPayload struct {
	ExperienceID string  `json:"experience_id"`
	RecordRef    RawRef  `json:"record_ref"`
	Role         *string `json:"role,omitempty"`
	CreatedAt    *string `json:"created_at,omitempty"`
}

type ExperienceDescriptionUpdatedPayload struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Lifecycle/introspection/reflection/dream/sensed events carry no
// identity-bearing payload beyond an optional free-text note; they are
// materialized by the brain_activity projection (SPEC_FULL supplement).
type ActivityPayload struct {
	Note string `json:"note,omitempty"`
}
