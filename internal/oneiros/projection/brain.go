package projection

import (
	"database/sql"
	"time"

	"github.com/oneiros/oneiros/internal/oneiros/event"
	"github.com/oneiros/oneiros/internal/oneiros/id"
	"github.com/oneiros/oneiros/internal/oneiros/link"
	"github.com/oneiros/oneiros/internal/oneiros/model"
)

// brainSchema creates every table a brain's projections materialize.
// Vocabulary tables precede the entities that cite them, matching the
// dependency ordering spec §4.3 describes.
const brainSchema = `
CREATE TABLE IF NOT EXISTS vocab_texture (name TEXT PRIMARY KEY, description TEXT NOT NULL);
CREATE TABLE IF NOT EXISTS vocab_level (name TEXT PRIMARY KEY, description TEXT NOT NULL);
CREATE TABLE IF NOT EXISTS vocab_sensation (name TEXT PRIMARY KEY, description TEXT NOT NULL);
CREATE TABLE IF NOT EXISTS vocab_nature (name TEXT PRIMARY KEY, description TEXT NOT NULL);
CREATE TABLE IF NOT EXISTS vocab_persona (name TEXT PRIMARY KEY, description TEXT NOT NULL);

CREATE TABLE IF NOT EXISTS storage_entries (
    key         TEXT PRIMARY KEY,
    description TEXT NOT NULL,
    hash        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS agents (
    id          TEXT PRIMARY KEY,
    link        TEXT NOT NULL,
    name        TEXT NOT NULL UNIQUE,
    persona     TEXT NOT NULL,
    description TEXT NOT NULL,
    prompt      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cognitions (
    id         TEXT PRIMARY KEY,
    link       TEXT NOT NULL,
    agent_id   TEXT NOT NULL,
    texture    TEXT NOT NULL,
    content    TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS memories (
    id         TEXT PRIMARY KEY,
    link       TEXT NOT NULL,
    agent_id   TEXT NOT NULL,
    level      TEXT NOT NULL,
    content    TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS experiences (
    id          TEXT PRIMARY KEY,
    link        TEXT NOT NULL,
    agent_id    TEXT NOT NULL,
    sensation   TEXT NOT NULL,
    description TEXT NOT NULL,
    created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS experience_ref (
    experience_id TEXT NOT NULL,
    entity_ref    TEXT NOT NULL,
    role          TEXT,
    created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS connections (
    id         TEXT PRIMARY KEY,
    link       TEXT NOT NULL,
    nature     TEXT NOT NULL,
    from_link  TEXT NOT NULL,
    to_link    TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS brain_activity (
    rowid      INTEGER PRIMARY KEY AUTOINCREMENT,
    kind       TEXT NOT NULL,
    note       TEXT NOT NULL,
    occurred_at TEXT NOT NULL
);
`

// BrainSchema is exported so the daemon can create a fresh brain
// database's tables before the first rebuild.
func BrainSchema() string { return brainSchema }

// BrainProjections returns the fixed projection list that rebuilds a
// single brain's cognitive store (spec §4.3): vocabulary, then storage,
// then agents, then cognitions/memories/experiences, then connections.
func BrainProjections() []Projection {
	return []Projection{
		vocabProjection("texture", "vocab_texture", event.TextureSet, event.TextureRemoved),
		vocabProjection("level", "vocab_level", event.LevelSet, event.LevelRemoved),
		vocabProjection("sensation", "vocab_sensation", event.SensationSet, event.SensationRemoved),
		vocabProjection("nature", "vocab_nature", event.NatureSet, event.NatureRemoved),
		vocabProjection("persona", "vocab_persona", event.PersonaSet, event.PersonaRemoved),
		storageProjection(),
		agentProjection(),
		cognitionProjection(),
		memoryProjection(),
		experienceProjection(),
		connectionProjection(),
		brainActivityProjection(),
	}
}

// brainActivityProjection materializes the lifecycle, introspection,
// reflection, dream, and sensed events as an insert-only activity log
// (SPEC_FULL supplement: these events carry no identity, so there is
// nothing to update or delete, only append).
func brainActivityProjection() Projection {
	return Projection{
		Name: "brain_activity",
		Events: []event.Type{
			event.Woke, event.Slept, event.Emerged, event.Receded,
			event.DreamBegun, event.DreamComplete,
			event.IntrospectionBegun, event.IntrospectionComplete,
			event.ReflectionBegun, event.ReflectionComplete,
			event.Sensed,
		},
		Apply: func(db *sql.DB, ev event.Event) error {
			var p event.ActivityPayload
			if err := ev.Decode(&p); err != nil {
				return err
			}
			kind, occurredAt := string(ev.Envelope.Type), ev.Timestamp.UTC().Format(time.RFC3339Nano)
			_, err := db.Exec(`INSERT INTO brain_activity (kind, note, occurred_at) SELECT ?, ?, ?
				WHERE NOT EXISTS (SELECT 1 FROM brain_activity WHERE kind = ? AND note = ? AND occurred_at = ?)`,
				kind, p.Note, occurredAt, kind, p.Note, occurredAt)
			return err
		},
		Reset: func(db *sql.DB) error {
			_, err := db.Exec(`DROP TABLE IF EXISTS brain_activity`)
			if err != nil {
				return err
			}
			_, err = db.Exec(`CREATE TABLE brain_activity (rowid INTEGER PRIMARY KEY AUTOINCREMENT, kind TEXT NOT NULL, note TEXT NOT NULL, occurred_at TEXT NOT NULL)`)
			return err
		},
	}
}

// vocabProjection builds the insert-or-replace/delete-by-name pair
// shared by all five vocabulary kinds (spec §4.3: "each vocabulary
// entity has two projections").
func vocabProjection(name, table string, setType, removedType event.Type) Projection {
	return Projection{
		Name:   name,
		Events: []event.Type{setType, removedType},
		Apply: func(db *sql.DB, ev event.Event) error {
			switch ev.Envelope.Type {
			case setType:
				var p event.VocabSetPayload
				if err := ev.Decode(&p); err != nil {
					return err
				}
				_, err := db.Exec(`INSERT OR REPLACE INTO `+table+` (name, description) VALUES (?, ?)`,
					p.Name, p.Description)
				return err
			case removedType:
				var p event.VocabRemovedPayload
				if err := ev.Decode(&p); err != nil {
					return err
				}
				_, err := db.Exec(`DELETE FROM `+table+` WHERE name = ?`, p.Name)
				return err
			}
			return nil
		},
		Reset: func(db *sql.DB) error {
			_, err := db.Exec(`DROP TABLE IF EXISTS ` + table)
			if err != nil {
				return err
			}
			_, err = db.Exec(`CREATE TABLE ` + table + ` (name TEXT PRIMARY KEY, description TEXT NOT NULL)`)
			return err
		},
	}
}

func storageProjection() Projection {
	return Projection{
		Name:   "storage",
		Events: []event.Type{event.StorageSet, event.StorageRemoved},
		Apply: func(db *sql.DB, ev event.Event) error {
			switch ev.Envelope.Type {
			case event.StorageSet:
				var p event.StorageSetPayload
				if err := ev.Decode(&p); err != nil {
					return err
				}
				_, err := db.Exec(`INSERT OR REPLACE INTO storage_entries (key, description, hash) VALUES (?, ?, ?)`,
					p.Key, p.Description, p.Hash)
				return err
			case event.StorageRemoved:
				var p event.StorageRemovedPayload
				if err := ev.Decode(&p); err != nil {
					return err
				}
				_, err := db.Exec(`DELETE FROM storage_entries WHERE key = ?`, p.Key)
				return err
			}
			return nil
		},
		Reset: func(db *sql.DB) error {
			_, err := db.Exec(`DROP TABLE IF EXISTS storage_entries`)
			if err != nil {
				return err
			}
			_, err = db.Exec(`CREATE TABLE storage_entries (key TEXT PRIMARY KEY, description TEXT NOT NULL, hash TEXT NOT NULL)`)
			return err
		},
	}
}

func agentProjection() Projection {
	upsert := func(db *sql.DB, idStr, name, persona, description, prompt string) error {
		parsed, err := id.Parse(idStr)
		if err != nil {
			return err
		}
		a := model.Agent{ID: parsed, Name: model.AgentName(name), Persona: model.PersonaName(persona),
			Description: description, Prompt: prompt}
		_, err = db.Exec(`INSERT OR REPLACE INTO agents (id, link, name, persona, description, prompt) VALUES (?, ?, ?, ?, ?, ?)`,
			parsed.String(), a.Addr().String(), name, persona, description, prompt)
		return err
	}
	return Projection{
		Name:   "agent",
		Events: []event.Type{event.AgentCreated, event.AgentUpdated, event.AgentRemoved},
		Apply: func(db *sql.DB, ev event.Event) error {
			switch ev.Envelope.Type {
			case event.AgentCreated:
				var p event.AgentCreatedPayload
				if err := ev.Decode(&p); err != nil {
					return err
				}
				return upsert(db, p.ID, p.Name, p.Persona, p.Description, p.Prompt)
			case event.AgentUpdated:
				var p event.AgentUpdatedPayload
				if err := ev.Decode(&p); err != nil {
					return err
				}
				return upsert(db, p.ID, p.Name, p.Persona, p.Description, p.Prompt)
			case event.AgentRemoved:
				var p event.AgentRemovedPayload
				if err := ev.Decode(&p); err != nil {
					return err
				}
				_, err := db.Exec(`DELETE FROM agents WHERE name = ?`, p.Name)
				return err
			}
			return nil
		},
		Reset: func(db *sql.DB) error {
			_, err := db.Exec(`DROP TABLE IF EXISTS agents`)
			if err != nil {
				return err
			}
			_, err = db.Exec(`CREATE TABLE agents (id TEXT PRIMARY KEY, link TEXT NOT NULL, name TEXT NOT NULL UNIQUE, persona TEXT NOT NULL, description TEXT NOT NULL, prompt TEXT NOT NULL)`)
			return err
		},
	}
}

func cognitionProjection() Projection {
	return Projection{
		Name:   "cognition",
		Events: []event.Type{event.CognitionAdded},
		Apply: func(db *sql.DB, ev event.Event) error {
			var p event.CognitionAddedPayload
			if err := ev.Decode(&p); err != nil {
				return err
			}
			parsed, err := id.Parse(p.ID)
			if err != nil {
				return err
			}
			c := model.Cognition{ID: parsed, Texture: model.TextureName(p.Texture)}
			c.Content = p.Content
			_, err = db.Exec(`INSERT OR IGNORE INTO cognitions (id, link, agent_id, texture, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
				parsed.String(), c.Addr().String(), p.AgentID, p.Texture, p.Content, p.CreatedAt)
			return err
		},
		Reset: func(db *sql.DB) error {
			_, err := db.Exec(`DROP TABLE IF EXISTS cognitions`)
			if err != nil {
				return err
			}
			_, err = db.Exec(`CREATE TABLE cognitions (id TEXT PRIMARY KEY, link TEXT NOT NULL, agent_id TEXT NOT NULL, texture TEXT NOT NULL, content TEXT NOT NULL, created_at TEXT NOT NULL)`)
			return err
		},
	}
}

func memoryProjection() Projection {
	return Projection{
		Name:   "memory",
		Events: []event.Type{event.MemoryAdded},
		Apply: func(db *sql.DB, ev event.Event) error {
			var p event.MemoryAddedPayload
			if err := ev.Decode(&p); err != nil {
				return err
			}
			parsed, err := id.Parse(p.ID)
			if err != nil {
				return err
			}
			m := model.Memory{ID: parsed, Level: model.LevelName(p.Level)}
			m.Content = p.Content
			_, err = db.Exec(`INSERT OR IGNORE INTO memories (id, link, agent_id, level, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
				parsed.String(), m.Addr().String(), p.AgentID, p.Level, p.Content, p.CreatedAt)
			return err
		},
		Reset: func(db *sql.DB) error {
			_, err := db.Exec(`DROP TABLE IF EXISTS memories`)
			if err != nil {
				return err
			}
			_, err = db.Exec(`CREATE TABLE memories (id TEXT PRIMARY KEY, link TEXT NOT NULL, agent_id TEXT NOT NULL, level TEXT NOT NULL, content TEXT NOT NULL, created_at TEXT NOT NULL)`)
			return err
		},
	}
}

// refFromRaw reconstructs a model.Ref from the event package's
// structural RawRef, which carries the same (kind, id-or-name) shape
// without importing model (avoiding an event↔model import cycle).
func refFromRaw(raw event.RawRef) (model.Ref, error) {
	res := model.Resource{Kind: model.ResourceKind(raw.Resource.Kind), Name: raw.Resource.Name}
	if raw.Resource.ID != "" {
		parsed, err := id.Parse(raw.Resource.ID)
		if err != nil {
			return model.Ref{}, err
		}
		res.ID = parsed
	}
	return model.Ref{Version: raw.Version, Resource: res}, nil
}

func experienceProjection() Projection {
	return Projection{
		Name: "experience",
		Events: []event.Type{
			event.ExperienceCreated,
			event.ExperienceRefAdded,
			event.ExperienceDescriptionUpdated,
		},
		Apply: func(db *sql.DB, ev event.Event) error {
			switch ev.Envelope.Type {
			case event.ExperienceCreated:
				var p event.ExperienceCreatedPayload
				if err := ev.Decode(&p); err != nil {
					return err
				}
				parsed, err := id.Parse(p.ID)
				if err != nil {
					return err
				}
				e := model.Experience{ID: parsed, Sensation: model.SensationName(p.Sensation), Description: p.Description}
				_, err = db.Exec(`INSERT OR IGNORE INTO experiences (id, link, agent_id, sensation, description, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
					parsed.String(), e.Addr().String(), p.AgentID, p.Sensation, p.Description, p.CreatedAt)
				return err

			case event.ExperienceRefAdded:
				var p event.ExperienceRefAddedPayload
				if err := ev.Decode(&p); err != nil {
					return err
				}
				ref, err := refFromRaw(p.RecordRef)
				if err != nil {
					return err
				}
				refJSON, err := ref.MarshalJSON()
				if err != nil {
					return err
				}
				createdAt := ev.Timestamp.UTC().Format(time.RFC3339Nano)
				if p.CreatedAt != nil {
					createdAt = *p.CreatedAt
				}
				var role any
				if p.Role != nil {
					role = *p.Role
				}
				_, err = db.Exec(`INSERT INTO experience_ref (experience_id, entity_ref, role, created_at) SELECT ?, ?, ?, ?
					WHERE NOT EXISTS (SELECT 1 FROM experience_ref WHERE experience_id = ? AND entity_ref = ?)`,
					p.ExperienceID, string(refJSON), role, createdAt, p.ExperienceID, string(refJSON))
				return err

			case event.ExperienceDescriptionUpdated:
				var p event.ExperienceDescriptionUpdatedPayload
				if err := ev.Decode(&p); err != nil {
					return err
				}
				_, err := db.Exec(`UPDATE experiences SET description = ? WHERE id = ?`, p.Description, p.ID)
				return err
			}
			return nil
		},
		Reset: func(db *sql.DB) error {
			_, err := db.Exec(`DROP TABLE IF EXISTS experiences`)
			if err != nil {
				return err
			}
			if _, err := db.Exec(`DROP TABLE IF EXISTS experience_ref`); err != nil {
				return err
			}
			_, err = db.Exec(`CREATE TABLE experiences (id TEXT PRIMARY KEY, link TEXT NOT NULL, agent_id TEXT NOT NULL, sensation TEXT NOT NULL, description TEXT NOT NULL, created_at TEXT NOT NULL)`)
			if err != nil {
				return err
			}
			_, err = db.Exec(`CREATE TABLE experience_ref (experience_id TEXT NOT NULL, entity_ref TEXT NOT NULL, role TEXT, created_at TEXT NOT NULL)`)
			return err
		},
	}
}

func connectionProjection() Projection {
	return Projection{
		Name:   "connection",
		Events: []event.Type{event.ConnectionCreated, event.ConnectionRemoved},
		Apply: func(db *sql.DB, ev event.Event) error {
			switch ev.Envelope.Type {
			case event.ConnectionCreated:
				var p event.ConnectionCreatedPayload
				if err := ev.Decode(&p); err != nil {
					return err
				}
				parsed, err := id.Parse(p.ID)
				if err != nil {
					return err
				}
				fromLink, err := link.Parse(p.FromLink)
				if err != nil {
					return err
				}
				toLink, err := link.Parse(p.ToLink)
				if err != nil {
					return err
				}
				c := model.Connection{ID: parsed, Nature: model.NatureName(p.Nature), FromLink: fromLink, ToLink: toLink}
				_, err = db.Exec(`INSERT OR IGNORE INTO connections (id, link, nature, from_link, to_link, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
					parsed.String(), c.Addr().String(), p.Nature, p.FromLink, p.ToLink, p.CreatedAt)
				return err
			case event.ConnectionRemoved:
				var p event.ConnectionRemovedPayload
				if err := ev.Decode(&p); err != nil {
					return err
				}
				_, err := db.Exec(`DELETE FROM connections WHERE id = ?`, p.ID)
				return err
			}
			return nil
		},
		Reset: func(db *sql.DB) error {
			_, err := db.Exec(`DROP TABLE IF EXISTS connections`)
			if err != nil {
				return err
			}
			_, err = db.Exec(`CREATE TABLE connections (id TEXT PRIMARY KEY, link TEXT NOT NULL, nature TEXT NOT NULL, from_link TEXT NOT NULL, to_link TEXT NOT NULL, created_at TEXT NOT NULL)`)
			return err
		},
	}
}
