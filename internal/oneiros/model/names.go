// Package model implements the tagged Resource/Ref union, its opaque
// RefToken text form, and the entity structs that make up a brain's
// cognitive store.
package model

// Name types are typed string wrappers used as natural keys for
// vocabulary entities. Type identity matters at every interface that
// accepts one — a TenantName is never accepted where an ActorName is
// expected, even though both wrap string.

type TenantName string
type ActorName string
type BrainName string
type AgentName string
type PersonaName string
type TextureName string
type LevelName string
type SensationName string
type NatureName string
type StorageKey string

func (n TenantName) String() string    { return string(n) }
func (n ActorName) String() string     { return string(n) }
func (n BrainName) String() string     { return string(n) }
func (n AgentName) String() string     { return string(n) }
func (n PersonaName) String() string   { return string(n) }
func (n TextureName) String() string   { return string(n) }
func (n LevelName) String() string     { return string(n) }
func (n SensationName) String() string { return string(n) }
func (n NatureName) String() string    { return string(n) }
func (n StorageKey) String() string    { return string(n) }

// LevelPriority is the fixed ordering used by the dream collector's
// memory filter (spec §4.6 step 2). Unknown level names sort last.
var LevelPriority = map[LevelName]int{
	"core":     5,
	"working":  4,
	"session":  3,
	"project":  2,
	"archival": 1,
}

// PriorityOf returns a level's priority, defaulting to 0 ("unknown") for
// any name not in the fixed ordering.
func PriorityOf(l LevelName) int {
	if p, ok := LevelPriority[l]; ok {
		return p
	}
	return 0
}
