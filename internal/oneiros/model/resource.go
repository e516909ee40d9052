package model

import (
	"encoding/json"
	"fmt"

	"github.com/oneiros/oneiros/internal/oneiros/id"
)

// ResourceKind enumerates the fourteen entity kinds a Resource can name.
// The string value doubles as the kind's Link label.
type ResourceKind string

const (
	ResourceAgent      ResourceKind = "agent"
	ResourceActor      ResourceKind = "actor"
	ResourceBrain      ResourceKind = "brain"
	ResourceCognition  ResourceKind = "cognition"
	ResourceConnection ResourceKind = "connection"
	ResourceExperience ResourceKind = "experience"
	ResourceLevel      ResourceKind = "level"
	ResourceMemory     ResourceKind = "memory"
	ResourceNature     ResourceKind = "nature"
	ResourcePersona    ResourceKind = "persona"
	ResourceSensation  ResourceKind = "sensation"
	ResourceStorage    ResourceKind = "storage"
	ResourceTenant     ResourceKind = "tenant"
	ResourceTexture    ResourceKind = "texture"
)

// idKeyed reports whether a kind carries an Id (vs. a typed Name).
var idKeyed = map[ResourceKind]bool{
	ResourceAgent:      true,
	ResourceActor:      true,
	ResourceBrain:      true,
	ResourceCognition:  true,
	ResourceConnection: true,
	ResourceExperience: true,
	ResourceMemory:     true,
	ResourceTenant:     true,
}

// Resource is the tagged union over entity kinds. Id-keyed variants
// populate ID; name-keyed variants populate Name.
type Resource struct {
	Kind ResourceKind
	ID   id.Id
	Name string
}

func newIDResource(kind ResourceKind, i id.Id) Resource {
	return Resource{Kind: kind, ID: i}
}

func newNameResource(kind ResourceKind, name string) Resource {
	return Resource{Kind: kind, Name: name}
}

func NewAgentResource(i id.Id) Resource      { return newIDResource(ResourceAgent, i) }
func NewActorResource(i id.Id) Resource      { return newIDResource(ResourceActor, i) }
func NewBrainResource(i id.Id) Resource      { return newIDResource(ResourceBrain, i) }
func NewCognitionResource(i id.Id) Resource  { return newIDResource(ResourceCognition, i) }
func NewConnectionResource(i id.Id) Resource { return newIDResource(ResourceConnection, i) }
func NewExperienceResource(i id.Id) Resource { return newIDResource(ResourceExperience, i) }
func NewMemoryResource(i id.Id) Resource     { return newIDResource(ResourceMemory, i) }
func NewTenantResource(i id.Id) Resource     { return newIDResource(ResourceTenant, i) }

func NewLevelResource(n LevelName) Resource         { return newNameResource(ResourceLevel, n.String()) }
func NewNatureResource(n NatureName) Resource       { return newNameResource(ResourceNature, n.String()) }
func NewPersonaResource(n PersonaName) Resource     { return newNameResource(ResourcePersona, n.String()) }
func NewSensationResource(n SensationName) Resource { return newNameResource(ResourceSensation, n.String()) }
func NewStorageResource(k StorageKey) Resource      { return newNameResource(ResourceStorage, k.String()) }
func NewTextureResource(n TextureName) Resource     { return newNameResource(ResourceTexture, n.String()) }

// Label returns the string used as this resource's Link label.
func (r Resource) Label() string { return string(r.Kind) }

// IsIDKeyed reports whether this resource carries an Id rather than a
// typed Name.
func (r Resource) IsIDKeyed() bool { return idKeyed[r.Kind] }

// String renders a human-readable form (kind + identifier).
func (r Resource) String() string {
	if r.IsIDKeyed() {
		return fmt.Sprintf("%s:%s", r.Kind, r.ID.String())
	}
	return fmt.Sprintf("%s:%s", r.Kind, r.Name)
}

type resourceWire struct {
	Kind ResourceKind `json:"kind"`
	ID   string       `json:"id,omitempty"`
	Name string       `json:"name,omitempty"`
}

// MarshalJSON renders the structural (tagged) wire form.
func (r Resource) MarshalJSON() ([]byte, error) {
	w := resourceWire{Kind: r.Kind}
	if r.IsIDKeyed() {
		w.ID = r.ID.String()
	} else {
		w.Name = r.Name
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses the structural (tagged) wire form.
func (r *Resource) UnmarshalJSON(data []byte) error {
	var w resourceWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.Kind = w.Kind
	if idKeyed[w.Kind] {
		parsed, err := id.Parse(w.ID)
		if err != nil {
			return fmt.Errorf("model: resource %q: %w", w.Kind, err)
		}
		r.ID = parsed
	} else {
		r.Name = w.Name
	}
	return nil
}
