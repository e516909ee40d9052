// Package dream implements the dream collector (spec §4.6): assembling
// what an agent should bring into a new session by filtering memories,
// seeding a bounded breadth-first walk of the connection graph from
// recent activity, and capping the result to a reviewable size.
//
// The traversal is grounded on the frontier-expansion shape of GoKitt's
// sibling graph package (haivivi-giztoy's pkg/graph Expand), adapted
// from a relation-store abstraction to direct SQL against the brain
// projections' tables, and from unbounded hop counts to the spec's
// per-step depth check and connection bookkeeping.
package dream

import (
	"database/sql"
	"sort"

	"github.com/oneiros/oneiros/internal/oneiros/errs"
	"github.com/oneiros/oneiros/internal/oneiros/link"
	"github.com/oneiros/oneiros/internal/oneiros/model"
)

// Config tunes the collector. A zero value is not usable directly; call
// DefaultConfig and override individual fields.
type Config struct {
	RecentWindow      int
	DreamDepth        *int // nil = unbounded
	CognitionSize     *int
	RecollectionLevel model.LevelName
	RecollectionSize  *int
	ExperienceSize    *int
}

func intPtr(v int) *int { return &v }

// DefaultConfig returns the defaults spec §4.6 names.
func DefaultConfig() Config {
	return Config{
		RecentWindow:      5,
		DreamDepth:        intPtr(1),
		CognitionSize:     intPtr(20),
		RecollectionLevel: model.LevelName("project"),
		RecollectionSize:  intPtr(30),
		ExperienceSize:    intPtr(10),
	}
}

// Context is the assembled result: what an agent should bring into a
// new session.
type Context struct {
	Agent       model.Agent
	Persona     model.Persona
	Memories    []model.Memory
	Cognitions  []model.Cognition
	Experiences []model.Experience
	Connections []model.Connection

	Textures   []model.Texture
	Levels     []model.Level
	Sensations []model.Sensation
	Natures    []model.Nature
}

// Collect runs the full algorithm against a brain database for the
// named agent.
func Collect(db *sql.DB, agentName model.AgentName, cfg Config) (*Context, error) {
	agent, err := loadAgent(db, agentName)
	if err != nil {
		return nil, err
	}
	persona, err := loadPersona(db, agent.Persona)
	if err != nil {
		return nil, err
	}

	textures, err := loadTextures(db)
	if err != nil {
		return nil, err
	}
	levels, err := loadLevels(db)
	if err != nil {
		return nil, err
	}
	sensations, err := loadSensations(db)
	if err != nil {
		return nil, err
	}
	natures, err := loadNatures(db)
	if err != nil {
		return nil, err
	}

	memories, err := filterMemories(db, agent.ID.String(), cfg)
	if err != nil {
		return nil, err
	}

	recentExperiences, err := recentExperiences(db, agent.ID.String(), cfg.RecentWindow)
	if err != nil {
		return nil, err
	}

	seeds := make([]string, 0, len(memories)+len(recentExperiences))
	for _, m := range memories {
		seeds = append(seeds, m.Addr().String())
	}
	for _, e := range recentExperiences {
		seeds = append(seeds, e.Addr().String())
	}

	walk, err := bfs(db, seeds, cfg.DreamDepth)
	if err != nil {
		return nil, err
	}

	cognitions, err := selectCognitions(db, agent.ID.String(), walk, cfg)
	if err != nil {
		return nil, err
	}
	experiences, err := selectExperiences(db, recentExperiences, walk, cfg)
	if err != nil {
		return nil, err
	}

	keepRefs := make(map[string]struct{}, len(memories)+len(cognitions)+len(experiences))
	for _, m := range memories {
		keepRefs[m.Addr().String()] = struct{}{}
	}
	for _, c := range cognitions {
		keepRefs[c.Addr().String()] = struct{}{}
	}
	for _, e := range experiences {
		keepRefs[e.Addr().String()] = struct{}{}
	}

	connections := make([]model.Connection, 0, len(walk.connections))
	for _, c := range walk.connections {
		_, fromKept := keepRefs[c.FromLink.String()]
		_, toKept := keepRefs[c.ToLink.String()]
		if fromKept && toKept {
			connections = append(connections, c)
		}
	}

	return &Context{
		Agent:       agent,
		Persona:     persona,
		Memories:    memories,
		Cognitions:  cognitions,
		Experiences: experiences,
		Connections: connections,
		Textures:    textures,
		Levels:      levels,
		Sensations:  sensations,
		Natures:     natures,
	}, nil
}

func loadAgent(db *sql.DB, name model.AgentName) (model.Agent, error) {
	var idStr, persona, description, prompt string
	err := db.QueryRow(`SELECT id, persona, description, prompt FROM agents WHERE name = ?`, name.String()).
		Scan(&idStr, &persona, &description, &prompt)
	if err == sql.ErrNoRows {
		return model.Agent{}, &errs.NotFoundError{Kind: "agent", Identifier: name.String()}
	}
	if err != nil {
		return model.Agent{}, &errs.StoreIOError{Cause: err}
	}
	parsed, err := parseID(idStr)
	if err != nil {
		return model.Agent{}, err
	}
	return model.Agent{ID: parsed, Name: name, Persona: model.PersonaName(persona), Description: description, Prompt: prompt}, nil
}

func loadPersona(db *sql.DB, name model.PersonaName) (model.Persona, error) {
	var description string
	err := db.QueryRow(`SELECT description FROM vocab_persona WHERE name = ?`, name.String()).Scan(&description)
	if err == sql.ErrNoRows {
		return model.Persona{Name: name}, nil
	}
	if err != nil {
		return model.Persona{}, &errs.StoreIOError{Cause: err}
	}
	return model.Persona{Name: name, Description: description}, nil
}

func loadTextures(db *sql.DB) ([]model.Texture, error) {
	rows, err := db.Query(`SELECT name, description FROM vocab_texture ORDER BY name`)
	if err != nil {
		return nil, &errs.StoreIOError{Cause: err}
	}
	defer rows.Close()
	var out []model.Texture
	for rows.Next() {
		var name, description string
		if err := rows.Scan(&name, &description); err != nil {
			return nil, &errs.StoreIOError{Cause: err}
		}
		out = append(out, model.Texture{Name: model.TextureName(name), Description: description})
	}
	return out, rows.Err()
}

func loadLevels(db *sql.DB) ([]model.Level, error) {
	rows, err := db.Query(`SELECT name, description FROM vocab_level ORDER BY name`)
	if err != nil {
		return nil, &errs.StoreIOError{Cause: err}
	}
	defer rows.Close()
	var out []model.Level
	for rows.Next() {
		var name, description string
		if err := rows.Scan(&name, &description); err != nil {
			return nil, &errs.StoreIOError{Cause: err}
		}
		out = append(out, model.Level{Name: model.LevelName(name), Description: description})
	}
	return out, rows.Err()
}

func loadSensations(db *sql.DB) ([]model.Sensation, error) {
	rows, err := db.Query(`SELECT name, description FROM vocab_sensation ORDER BY name`)
	if err != nil {
		return nil, &errs.StoreIOError{Cause: err}
	}
	defer rows.Close()
	var out []model.Sensation
	for rows.Next() {
		var name, description string
		if err := rows.Scan(&name, &description); err != nil {
			return nil, &errs.StoreIOError{Cause: err}
		}
		out = append(out, model.Sensation{Name: model.SensationName(name), Description: description})
	}
	return out, rows.Err()
}

func loadNatures(db *sql.DB) ([]model.Nature, error) {
	rows, err := db.Query(`SELECT name, description FROM vocab_nature ORDER BY name`)
	if err != nil {
		return nil, &errs.StoreIOError{Cause: err}
	}
	defer rows.Close()
	var out []model.Nature
	for rows.Next() {
		var name, description string
		if err := rows.Scan(&name, &description); err != nil {
			return nil, &errs.StoreIOError{Cause: err}
		}
		out = append(out, model.Nature{Name: model.NatureName(name), Description: description})
	}
	return out, rows.Err()
}

// filterMemories implements spec §4.6 step 2: core memories always
// included, the rest filtered by level priority and capped.
func filterMemories(db *sql.DB, agentID string, cfg Config) ([]model.Memory, error) {
	all, err := memoriesForAgent(db, agentID)
	if err != nil {
		return nil, err
	}

	var core, rest []model.Memory
	for _, m := range all {
		if m.Level == model.LevelName("core") {
			core = append(core, m)
			continue
		}
		if model.PriorityOf(m.Level) >= model.PriorityOf(cfg.RecollectionLevel) {
			rest = append(rest, m)
		}
	}

	sort.SliceStable(rest, func(i, j int) bool { return rest[i].CreatedAt.After(rest[j].CreatedAt) })
	if cfg.RecollectionSize != nil && len(rest) > *cfg.RecollectionSize {
		rest = rest[:*cfg.RecollectionSize]
	}

	out := append(core, rest...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func memoriesForAgent(db *sql.DB, agentID string) ([]model.Memory, error) {
	rows, err := db.Query(`SELECT id, level, content, created_at FROM memories WHERE agent_id = ? ORDER BY created_at ASC`, agentID)
	if err != nil {
		return nil, &errs.StoreIOError{Cause: err}
	}
	defer rows.Close()

	agentParsed, err := parseID(agentID)
	if err != nil {
		return nil, err
	}

	var out []model.Memory
	for rows.Next() {
		var idStr, level, content, createdAt string
		if err := rows.Scan(&idStr, &level, &content, &createdAt); err != nil {
			return nil, &errs.StoreIOError{Cause: err}
		}
		parsed, err := parseID(idStr)
		if err != nil {
			return nil, err
		}
		ts, err := parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		m := model.Memory{ID: parsed, AgentID: agentParsed, Level: model.LevelName(level)}
		m.Content = content
		m.CreatedAt = ts
		out = append(out, m)
	}
	return out, rows.Err()
}

func recentExperiences(db *sql.DB, agentID string, window int) ([]model.Experience, error) {
	rows, err := db.Query(`SELECT id, sensation, description, created_at FROM experiences WHERE agent_id = ? ORDER BY created_at DESC LIMIT ?`, agentID, window)
	if err != nil {
		return nil, &errs.StoreIOError{Cause: err}
	}
	defer rows.Close()

	agentParsed, err := parseID(agentID)
	if err != nil {
		return nil, err
	}

	var out []model.Experience
	for rows.Next() {
		var idStr, sensation, description, createdAt string
		if err := rows.Scan(&idStr, &sensation, &description, &createdAt); err != nil {
			return nil, &errs.StoreIOError{Cause: err}
		}
		parsed, err := parseID(idStr)
		if err != nil {
			return nil, err
		}
		ts, err := parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		e := model.Experience{ID: parsed, AgentID: agentParsed, Sensation: model.SensationName(sensation), Description: description}
		e.CreatedAt = ts
		out = append(out, e)
	}
	return out, rows.Err()
}

// walkResult holds the discoveries of a bounded breadth-first walk:
// every connection touched, and the links of cognitions/experiences found
// along the way (for step 6/7's merge).
type walkResult struct {
	connections     []model.Connection
	cognitionLinks  map[string]struct{}
	experienceLinks map[string]struct{}
}

// bfs implements spec §4.6 steps 4-5. depthLimit nil means unbounded.
func bfs(db *sql.DB, seeds []string, depthLimit *int) (*walkResult, error) {
	visited := make(map[string]int, len(seeds))
	queue := make([]string, 0, len(seeds))
	for _, s := range seeds {
		if _, ok := visited[s]; ok {
			continue
		}
		visited[s] = 0
		queue = append(queue, s)
	}

	result := &walkResult{
		cognitionLinks:  make(map[string]struct{}),
		experienceLinks: make(map[string]struct{}),
	}
	seenConnections := make(map[string]struct{})

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		depth := visited[node]

		rows, err := db.Query(`SELECT id, link, nature, from_link, to_link, created_at FROM connections WHERE from_link = ? OR to_link = ?`, node, node)
		if err != nil {
			return nil, &errs.StoreIOError{Cause: err}
		}
		var touched []model.Connection
		for rows.Next() {
			var idStr, linkStr, nature, fromLinkStr, toLinkStr, createdAt string
			if err := rows.Scan(&idStr, &linkStr, &nature, &fromLinkStr, &toLinkStr, &createdAt); err != nil {
				rows.Close()
				return nil, &errs.StoreIOError{Cause: err}
			}
			parsed, err := parseID(idStr)
			if err != nil {
				rows.Close()
				return nil, err
			}
			fromLink, err := link.Parse(fromLinkStr)
			if err != nil {
				rows.Close()
				return nil, &errs.MalformedLinkError{Cause: err}
			}
			toLink, err := link.Parse(toLinkStr)
			if err != nil {
				rows.Close()
				return nil, &errs.MalformedLinkError{Cause: err}
			}
			ts, err := parseTime(createdAt)
			if err != nil {
				rows.Close()
				return nil, err
			}
			c := model.Connection{ID: parsed, Nature: model.NatureName(nature), FromLink: fromLink, ToLink: toLink}
			c.CreatedAt = ts
			touched = append(touched, c)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, &errs.StoreIOError{Cause: err}
		}

		for _, c := range touched {
			if _, ok := seenConnections[c.ID.String()]; ok {
				continue
			}
			seenConnections[c.ID.String()] = struct{}{}
			result.connections = append(result.connections, c)

			other := c.ToLink.String()
			if other == node {
				other = c.FromLink.String()
			}

			withinDepth := depthLimit == nil || depth+1 <= *depthLimit
			if !withinDepth {
				continue
			}
			if _, ok := visited[other]; ok {
				continue
			}
			visited[other] = depth + 1
			queue = append(queue, other)

			otherLink, err := link.Parse(other)
			if err != nil {
				continue
			}
			switch {
			case otherLink.HasLabel("cognition"):
				result.cognitionLinks[other] = struct{}{}
			case otherLink.HasLabel("experience"):
				result.experienceLinks[other] = struct{}{}
			}
		}
	}

	return result, nil
}

// selectCognitions implements spec §4.6 step 6.
func selectCognitions(db *sql.DB, agentID string, walk *walkResult, cfg Config) ([]model.Cognition, error) {
	if len(walk.connections) == 0 {
		return allCognitions(db, agentID)
	}

	recent, err := recentCognitions(db, agentID, cfg.RecentWindow)
	if err != nil {
		return nil, err
	}
	discovered, err := cognitionsByLink(db, walk.cognitionLinks)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]model.Cognition, len(recent)+len(discovered))
	for _, c := range recent {
		merged[c.ID.String()] = c
	}
	for _, c := range discovered {
		merged[c.ID.String()] = c
	}

	out := make([]model.Cognition, 0, len(merged))
	for _, c := range merged {
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	if cfg.CognitionSize != nil && len(out) > *cfg.CognitionSize {
		out = out[len(out)-*cfg.CognitionSize:]
	}
	return out, nil
}

// selectExperiences implements spec §4.6 step 7.
func selectExperiences(db *sql.DB, recent []model.Experience, walk *walkResult, cfg Config) ([]model.Experience, error) {
	discovered, err := experiencesByLink(db, walk.experienceLinks)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]model.Experience, len(recent)+len(discovered))
	for _, e := range recent {
		merged[e.ID.String()] = e
	}
	for _, e := range discovered {
		merged[e.ID.String()] = e
	}

	out := make([]model.Experience, 0, len(merged))
	for _, e := range merged {
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	if cfg.ExperienceSize != nil && len(out) > *cfg.ExperienceSize {
		out = out[len(out)-*cfg.ExperienceSize:]
	}
	return out, nil
}

func allCognitions(db *sql.DB, agentID string) ([]model.Cognition, error) {
	rows, err := db.Query(`SELECT id, texture, content, created_at FROM cognitions WHERE agent_id = ? ORDER BY created_at ASC`, agentID)
	if err != nil {
		return nil, &errs.StoreIOError{Cause: err}
	}
	defer rows.Close()
	return scanCognitions(rows, agentID)
}

func recentCognitions(db *sql.DB, agentID string, window int) ([]model.Cognition, error) {
	rows, err := db.Query(`SELECT id, texture, content, created_at FROM cognitions WHERE agent_id = ? ORDER BY created_at DESC LIMIT ?`, agentID, window)
	if err != nil {
		return nil, &errs.StoreIOError{Cause: err}
	}
	defer rows.Close()
	return scanCognitions(rows, agentID)
}

func cognitionsByLink(db *sql.DB, links map[string]struct{}) ([]model.Cognition, error) {
	var out []model.Cognition
	for l := range links {
		rows, err := db.Query(`SELECT id, agent_id, texture, content, created_at FROM cognitions WHERE link = ?`, l)
		if err != nil {
			return nil, &errs.StoreIOError{Cause: err}
		}
		for rows.Next() {
			var idStr, agentIDStr, texture, content, createdAt string
			if err := rows.Scan(&idStr, &agentIDStr, &texture, &content, &createdAt); err != nil {
				rows.Close()
				return nil, &errs.StoreIOError{Cause: err}
			}
			parsed, err := parseID(idStr)
			if err != nil {
				rows.Close()
				return nil, err
			}
			agentParsed, err := parseID(agentIDStr)
			if err != nil {
				rows.Close()
				return nil, err
			}
			ts, err := parseTime(createdAt)
			if err != nil {
				rows.Close()
				return nil, err
			}
			c := model.Cognition{ID: parsed, AgentID: agentParsed, Texture: model.TextureName(texture)}
			c.Content = content
			c.CreatedAt = ts
			out = append(out, c)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, &errs.StoreIOError{Cause: err}
		}
	}
	return out, nil
}

func experiencesByLink(db *sql.DB, links map[string]struct{}) ([]model.Experience, error) {
	var out []model.Experience
	for l := range links {
		rows, err := db.Query(`SELECT id, agent_id, sensation, description, created_at FROM experiences WHERE link = ?`, l)
		if err != nil {
			return nil, &errs.StoreIOError{Cause: err}
		}
		for rows.Next() {
			var idStr, agentIDStr, sensation, description, createdAt string
			if err := rows.Scan(&idStr, &agentIDStr, &sensation, &description, &createdAt); err != nil {
				rows.Close()
				return nil, &errs.StoreIOError{Cause: err}
			}
			parsed, err := parseID(idStr)
			if err != nil {
				rows.Close()
				return nil, err
			}
			agentParsed, err := parseID(agentIDStr)
			if err != nil {
				rows.Close()
				return nil, err
			}
			ts, err := parseTime(createdAt)
			if err != nil {
				rows.Close()
				return nil, err
			}
			e := model.Experience{ID: parsed, AgentID: agentParsed, Sensation: model.SensationName(sensation), Description: description}
			e.CreatedAt = ts
			out = append(out, e)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, &errs.StoreIOError{Cause: err}
		}
	}
	return out, nil
}

func scanCognitions(rows *sql.Rows, agentID string) ([]model.Cognition, error) {
	agentParsed, err := parseID(agentID)
	if err != nil {
		return nil, err
	}
	var out []model.Cognition
	for rows.Next() {
		var idStr, texture, content, createdAt string
		if err := rows.Scan(&idStr, &texture, &content, &createdAt); err != nil {
			return nil, &errs.StoreIOError{Cause: err}
		}
		parsed, err := parseID(idStr)
		if err != nil {
			return nil, err
		}
		ts, err := parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		c := model.Cognition{ID: parsed, AgentID: agentParsed, Texture: model.TextureName(texture)}
		c.Content = content
		c.CreatedAt = ts
		out = append(out, c)
	}
	return out, rows.Err()
}
