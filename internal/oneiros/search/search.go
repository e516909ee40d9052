// Package search implements the search index projection family (spec
// §4.5): an FTS5-equivalent `expressions` table fed by cognition,
// memory, experience, agent, and persona events, plus an optional
// sqlite-vec-backed semantic companion table. Grounded on GoKitt's
// pkg/implicit-matcher for text canonicalization (adapted, not copied,
// since GoKitt never had a real-FTS backing store to project into) and
// on oneiros-service/src/projections/search.rs for dispatch semantics.
package search

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/oneiros/oneiros/internal/oneiros/event"
	"github.com/oneiros/oneiros/internal/oneiros/id"
	"github.com/oneiros/oneiros/internal/oneiros/model"
	"github.com/oneiros/oneiros/internal/oneiros/projection"
)

const expressionsSchema = `
CREATE VIRTUAL TABLE IF NOT EXISTS expressions USING fts5(
    resource_ref UNINDEXED,
    kind UNINDEXED,
    text
);
`

// Schema is exported so the daemon can create the search index ahead of
// the first rebuild.
func Schema() string { return expressionsSchema }

// embeddingDims is a placeholder dimensionality for the optional
// semantic companion index; real population requires an external
// embedding model the core does not ship.
const embeddingDims = 256

var vecSchema = fmt.Sprintf(
	`CREATE VIRTUAL TABLE IF NOT EXISTS expressions_vec USING vec0(embedding float[%d]);`,
	embeddingDims)

// VecSchema is the DDL for the optional sqlite-vec semantic index (spec
// §9's supplemented domain-stack addition). Callers that want semantic
// search over expressions opt in by running it against the same
// database as Schema().
func VecSchema() string { return vecSchema }

// UpsertEmbedding stores a precomputed embedding vector for a resource
// ref in the optional semantic index. The core never computes
// embeddings itself; this is a seam for a caller that owns an embedding
// model to populate alongside the lexical index.
func UpsertEmbedding(db *sql.DB, ref model.RefToken, vector []float32) error {
	if len(vector) != embeddingDims {
		return fmt.Errorf("search: embedding must have %d dimensions, got %d", embeddingDims, len(vector))
	}
	blob := make([]byte, len(vector)*4)
	for i, f := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(f))
	}
	_, err := db.Exec(`INSERT OR REPLACE INTO expressions_vec (rowid, embedding) VALUES ((SELECT rowid FROM expressions WHERE resource_ref = ? LIMIT 1), ?)`,
		string(ref), blob)
	return err
}

// Result is one match returned from Query.
type Result struct {
	Ref     model.RefToken
	Kind    string
	Text    string
	Rank    float64
	Snippet string
}

// agentBoundKinds maps a search kind to the table (and id column) that
// resolves a ref back to the agent it belongs to, for the agent-scoped
// post-filter spec §4.5 describes.
var agentBoundKinds = map[string]string{
	"cognition":              "cognitions",
	"memory":                 "memories",
	"experience-description": "experiences",
}

func agentIDForRef(db *sql.DB, kind string, ref model.Ref) (string, bool, error) {
	switch kind {
	case "agent-description", "agent-prompt":
		return ref.Resource.ID.String(), true, nil
	}
	table, ok := agentBoundKinds[kind]
	if !ok {
		return "", false, nil
	}
	var agentID string
	err := db.QueryRow(`SELECT agent_id FROM `+table+` WHERE id = ?`, ref.Resource.ID.String()).Scan(&agentID)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return agentID, true, nil
}

// Query runs a full-text search against expressions. If agentName is
// non-empty, results are post-filtered to rows whose kind is
// agent-bound and whose ref resolves to that agent (spec §4.5: "agent
// scoping is a post-filter").
func Query(db *sql.DB, queryText, agentName string, limit int) ([]Result, error) {
	var scopedAgentID string
	if agentName != "" {
		if err := db.QueryRow(`SELECT id FROM agents WHERE name = ?`, agentName).Scan(&scopedAgentID); err != nil {
			if err == sql.ErrNoRows {
				return nil, nil
			}
			return nil, err
		}
	}

	rows, err := db.Query(
		`SELECT resource_ref, kind, text, bm25(expressions) AS rank
		   FROM expressions
		  WHERE expressions MATCH ?
		  ORDER BY rank
		  LIMIT ?`, queryText, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	terms := significantTerms(queryText)

	var out []Result
	for rows.Next() {
		var refText, kind, text string
		var rank float64
		if err := rows.Scan(&refText, &kind, &text, &rank); err != nil {
			return nil, err
		}

		if agentName != "" {
			ref, err := model.ParseRefToken(refText)
			if err != nil {
				continue
			}
			boundAgent, bound, err := agentIDForRef(db, kind, ref)
			if err != nil {
				return nil, err
			}
			if !bound || boundAgent != scopedAgentID {
				continue
			}
		}

		out = append(out, Result{
			Ref:     model.RefToken(refText),
			Kind:    kind,
			Text:    text,
			Rank:    rank,
			Snippet: snippet(text, terms),
		})
	}
	return out, rows.Err()
}

func resourceRef(kind model.ResourceKind, i id.Id) (model.RefToken, error) {
	res := model.Resource{Kind: kind, ID: i}
	return model.NewRef(res).Token()
}

func nameResourceRef(kind model.ResourceKind, name string) (model.RefToken, error) {
	res := model.Resource{Kind: kind, Name: name}
	return model.NewRef(res).Token()
}

// SearchProjection returns the single projection that feeds the
// expressions table from every event kind spec §4.5 names. It is meant
// to be appended to projection.BrainProjections() before running it
// through the projection engine.
func SearchProjection() projection.Projection {
	return projection.Projection{
		Name: "search",
		Events: []event.Type{
			event.CognitionAdded,
			event.MemoryAdded,
			event.ExperienceCreated,
			event.ExperienceDescriptionUpdated,
			event.AgentCreated,
			event.AgentUpdated,
			event.AgentRemoved,
			event.PersonaSet,
			event.PersonaRemoved,
		},
		Apply: apply,
		Reset: func(db *sql.DB) error {
			if _, err := db.Exec(`DROP TABLE IF EXISTS expressions`); err != nil {
				return err
			}
			_, err := db.Exec(expressionsSchema)
			return err
		},
	}
}

func apply(db *sql.DB, ev event.Event) error {
	switch ev.Envelope.Type {
	case event.CognitionAdded:
		var p event.CognitionAddedPayload
		if err := ev.Decode(&p); err != nil {
			return err
		}
		parsed, err := id.Parse(p.ID)
		if err != nil {
			return err
		}
		ref, err := resourceRef(model.ResourceCognition, parsed)
		if err != nil {
			return err
		}
		if err := deleteByRef(db, ref); err != nil {
			return err
		}
		return insert(db, ref, "cognition", p.Content)

	case event.MemoryAdded:
		var p event.MemoryAddedPayload
		if err := ev.Decode(&p); err != nil {
			return err
		}
		parsed, err := id.Parse(p.ID)
		if err != nil {
			return err
		}
		ref, err := resourceRef(model.ResourceMemory, parsed)
		if err != nil {
			return err
		}
		if err := deleteByRef(db, ref); err != nil {
			return err
		}
		return insert(db, ref, "memory", p.Content)

	case event.ExperienceCreated:
		var p event.ExperienceCreatedPayload
		if err := ev.Decode(&p); err != nil {
			return err
		}
		parsed, err := id.Parse(p.ID)
		if err != nil {
			return err
		}
		ref, err := resourceRef(model.ResourceExperience, parsed)
		if err != nil {
			return err
		}
		if err := deleteByRef(db, ref); err != nil {
			return err
		}
		return insert(db, ref, "experience-description", p.Description)

	case event.ExperienceDescriptionUpdated:
		var p event.ExperienceDescriptionUpdatedPayload
		if err := ev.Decode(&p); err != nil {
			return err
		}
		parsed, err := id.Parse(p.ID)
		if err != nil {
			return err
		}
		ref, err := resourceRef(model.ResourceExperience, parsed)
		if err != nil {
			return err
		}
		if err := deleteByRef(db, ref); err != nil {
			return err
		}
		return insert(db, ref, "experience-description", p.Description)

	case event.AgentCreated, event.AgentUpdated:
		var id_, name, description, prompt string
		if ev.Envelope.Type == event.AgentCreated {
			var p event.AgentCreatedPayload
			if err := ev.Decode(&p); err != nil {
				return err
			}
			id_, name, description, prompt = p.ID, p.Name, p.Description, p.Prompt
		} else {
			var p event.AgentUpdatedPayload
			if err := ev.Decode(&p); err != nil {
				return err
			}
			id_, name, description, prompt = p.ID, p.Name, p.Description, p.Prompt
		}
		_ = name
		parsed, err := id.Parse(id_)
		if err != nil {
			return err
		}
		ref, err := resourceRef(model.ResourceAgent, parsed)
		if err != nil {
			return err
		}
		if err := deleteByRef(db, ref); err != nil {
			return err
		}
		if err := insert(db, ref, "agent-description", description); err != nil {
			return err
		}
		return insert(db, ref, "agent-prompt", prompt)

	case event.AgentRemoved:
		var p event.AgentRemovedPayload
		if err := ev.Decode(&p); err != nil {
			return err
		}
		var agentIDStr string
		err := db.QueryRow(`SELECT id FROM agents WHERE name = ?`, p.Name).Scan(&agentIDStr)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		parsed, err := id.Parse(agentIDStr)
		if err != nil {
			return err
		}
		ref, err := resourceRef(model.ResourceAgent, parsed)
		if err != nil {
			return err
		}
		return deleteByRef(db, ref)

	case event.PersonaSet:
		var p event.VocabSetPayload
		if err := ev.Decode(&p); err != nil {
			return err
		}
		ref, err := nameResourceRef(model.ResourcePersona, p.Name)
		if err != nil {
			return err
		}
		if err := deleteByRef(db, ref); err != nil {
			return err
		}
		return insert(db, ref, "persona-description", p.Description)

	case event.PersonaRemoved:
		var p event.VocabRemovedPayload
		if err := ev.Decode(&p); err != nil {
			return err
		}
		ref, err := nameResourceRef(model.ResourcePersona, p.Name)
		if err != nil {
			return err
		}
		return deleteByRef(db, ref)
	}
	return nil
}

func insert(db *sql.DB, ref model.RefToken, kind, text string) error {
	_, err := db.Exec(`INSERT INTO expressions (resource_ref, kind, text) VALUES (?, ?, ?)`, string(ref), kind, text)
	return err
}

func deleteByRef(db *sql.DB, ref model.RefToken) error {
	_, err := db.Exec(`DELETE FROM expressions WHERE resource_ref = ?`, string(ref))
	return err
}
