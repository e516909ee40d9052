package model

import (
	"time"

	"github.com/oneiros/oneiros/internal/oneiros/id"
	"github.com/oneiros/oneiros/internal/oneiros/link"
)

// HasTimestamps composes a created-at instant into an entity by struct
// embedding, per spec §9's guidance to compose rather than subtype.
type HasTimestamps struct {
	CreatedAt time.Time `json:"createdAt"`
}

// HasContent composes free-text content into an entity by embedding.
type HasContent struct {
	Content string `json:"content"`
}

// Addressable is implemented by anything whose Link can be computed
// from its own identity fields.
type Addressable interface {
	Addr() link.Link
}

// Agent is a named participant in a brain. Identity: (name, persona).
type Agent struct {
	ID          id.Id
	Name        AgentName
	Persona     PersonaName
	Description string
	Prompt      string
}

func (a Agent) Addr() link.Link {
	return link.New("agent", link.String(a.Name.String()), link.String(a.Persona.String()))
}

// Cognition is a single texture-categorized thought. Identity:
// (texture, content).
type Cognition struct {
	ID      id.Id
	AgentID id.Id
	Texture TextureName
	HasContent
	HasTimestamps
}

func (c Cognition) Addr() link.Link {
	return link.New("cognition", link.String(c.Texture.String()), link.String(c.Content))
}

// Memory is a durable, level-categorized knowledge record. Identity:
// (level, content).
type Memory struct {
	ID      id.Id
	AgentID id.Id
	Level   LevelName
	HasContent
	HasTimestamps
}

func (m Memory) Addr() link.Link {
	return link.New("memory", link.String(m.Level.String()), link.String(m.Content))
}

// ExperienceRef is one entry in an Experience's refs list.
type ExperienceRef struct {
	Entity Ref
	Role   *string
}

// Experience is a sensation-categorized, description-bearing record
// carrying a list of refs to other entities. Identity: (sensation,
// description).
type Experience struct {
	ID          id.Id
	AgentID     id.Id
	Sensation   SensationName
	Description string
	Refs        []ExperienceRef
	HasTimestamps
}

func (e Experience) Addr() link.Link {
	return link.New("experience", link.String(e.Sensation.String()), link.String(e.Description))
}

// Connection is a typed, nature-categorized edge between two opaque
// refs. Identity: (nature, from_ref, to_ref). Endpoints are never
// assumed to name entities in this brain (spec invariant 5).
type Connection struct {
	ID       id.Id
	Nature   NatureName
	FromLink link.Link
	ToLink   link.Link
	HasTimestamps
}

func (c Connection) Addr() link.Link {
	return link.New("connection", link.String(c.Nature.String()), link.Nested(c.FromLink), link.Nested(c.ToLink))
}

// Vocabulary entities — identity: (name).

type Texture struct {
	Name        TextureName
	Description string
}

func (t Texture) Addr() link.Link { return link.New("texture", link.String(t.Name.String())) }

type Level struct {
	Name        LevelName
	Description string
}

func (l Level) Addr() link.Link { return link.New("level", link.String(l.Name.String())) }

type Sensation struct {
	Name        SensationName
	Description string
}

func (s Sensation) Addr() link.Link { return link.New("sensation", link.String(s.Name.String())) }

type Nature struct {
	Name        NatureName
	Description string
}

func (n Nature) Addr() link.Link { return link.New("nature", link.String(n.Name.String())) }

type Persona struct {
	Name        PersonaName
	Description string
}

func (p Persona) Addr() link.Link { return link.New("persona", link.String(p.Name.String())) }

// StorageEntry is an opaque blob descriptor. Identity: (key).
type StorageEntry struct {
	Key         StorageKey
	Description string
	Hash        string
}

func (s StorageEntry) Addr() link.Link { return link.New("storage", link.String(s.Key.String())) }

// System-level entities (spec §4.3's System projections).

type Tenant struct {
	ID   id.Id
	Name TenantName
}

func (t Tenant) Addr() link.Link { return link.New("tenant", link.String(t.Name.String())) }

type Actor struct {
	ID       id.Id
	TenantID id.Id
	Name     ActorName
}

func (a Actor) Addr() link.Link { return link.New("actor", link.String(a.Name.String())) }

type Brain struct {
	ID      id.Id
	ActorID id.Id
	Name    BrainName
}

func (b Brain) Addr() link.Link { return link.New("brain", link.String(b.Name.String())) }

// Ticket is a short-lived authorization record issued against a brain.
// Its fields beyond id/brain/expiry are out of the core's scope (token
// encoding lives with the HTTP collaborator per spec §1); the core only
// needs to materialize and expire it.
type Ticket struct {
	ID        id.Id
	BrainID   id.Id
	ExpiresAt time.Time
}
