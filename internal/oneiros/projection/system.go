package projection

import (
	"database/sql"

	"github.com/oneiros/oneiros/internal/oneiros/event"
	"github.com/oneiros/oneiros/internal/oneiros/id"
	"github.com/oneiros/oneiros/internal/oneiros/model"
)

// systemSchema creates the multi-tenant registry tables. Ordering within
// the statement list mirrors the foreign-key dependency spec §4.3 calls
// out: tenant, then actor, then brain, then ticket.
const systemSchema = `
CREATE TABLE IF NOT EXISTS tenants (
    id   TEXT PRIMARY KEY,
    link TEXT NOT NULL,
    name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS actors (
    id        TEXT PRIMARY KEY,
    link      TEXT NOT NULL,
    tenant_id TEXT NOT NULL,
    name      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS brains (
    id       TEXT PRIMARY KEY,
    link     TEXT NOT NULL,
    actor_id TEXT NOT NULL,
    name     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tickets (
    id         TEXT PRIMARY KEY,
    brain_id   TEXT NOT NULL,
    expires_at TEXT NOT NULL
);
`

// SystemSchema is exported so the daemon entrypoint can create the
// registry tables on first run, before any event has been appended.
func SystemSchema() string { return systemSchema }

// SystemProjections returns the fixed tenant → actor → brain → ticket
// projection list (spec §4.3).
func SystemProjections() []Projection {
	return []Projection{
		tenantProjection(),
		actorProjection(),
		brainProjection(),
		ticketProjection(),
	}
}

func tenantProjection() Projection {
	return Projection{
		Name:   "tenant",
		Events: []event.Type{event.TenantCreated},
		Apply: func(db *sql.DB, ev event.Event) error {
			var p event.TenantCreatedPayload
			if err := ev.Decode(&p); err != nil {
				return err
			}
			tid, err := id.Parse(p.ID)
			if err != nil {
				return err
			}
			t := model.Tenant{ID: tid, Name: model.TenantName(p.Name)}
			_, err = db.Exec(`INSERT OR REPLACE INTO tenants (id, link, name) VALUES (?, ?, ?)`,
				tid.String(), t.Addr().String(), p.Name)
			return err
		},
		Reset: func(db *sql.DB) error {
			_, err := db.Exec(`DROP TABLE IF EXISTS tenants`)
			if err != nil {
				return err
			}
			_, err = db.Exec(`CREATE TABLE tenants (id TEXT PRIMARY KEY, link TEXT NOT NULL, name TEXT NOT NULL UNIQUE)`)
			return err
		},
	}
}

func actorProjection() Projection {
	return Projection{
		Name:   "actor",
		Events: []event.Type{event.ActorCreated},
		Apply: func(db *sql.DB, ev event.Event) error {
			var p event.ActorCreatedPayload
			if err := ev.Decode(&p); err != nil {
				return err
			}
			aid, err := id.Parse(p.ID)
			if err != nil {
				return err
			}
			a := model.Actor{ID: aid, Name: model.ActorName(p.Name)}
			_, err = db.Exec(`INSERT OR REPLACE INTO actors (id, link, tenant_id, name) VALUES (?, ?, ?, ?)`,
				aid.String(), a.Addr().String(), p.TenantID, p.Name)
			return err
		},
		Reset: func(db *sql.DB) error {
			_, err := db.Exec(`DROP TABLE IF EXISTS actors`)
			if err != nil {
				return err
			}
			_, err = db.Exec(`CREATE TABLE actors (id TEXT PRIMARY KEY, link TEXT NOT NULL, tenant_id TEXT NOT NULL, name TEXT NOT NULL)`)
			return err
		},
	}
}

func brainProjection() Projection {
	return Projection{
		Name:   "brain",
		Events: []event.Type{event.BrainCreated},
		Apply: func(db *sql.DB, ev event.Event) error {
			var p event.BrainCreatedPayload
			if err := ev.Decode(&p); err != nil {
				return err
			}
			bid, err := id.Parse(p.ID)
			if err != nil {
				return err
			}
			b := model.Brain{ID: bid, Name: model.BrainName(p.Name)}
			_, err = db.Exec(`INSERT OR REPLACE INTO brains (id, link, actor_id, name) VALUES (?, ?, ?, ?)`,
				bid.String(), b.Addr().String(), p.ActorID, p.Name)
			return err
		},
		Reset: func(db *sql.DB) error {
			_, err := db.Exec(`DROP TABLE IF EXISTS brains`)
			if err != nil {
				return err
			}
			_, err = db.Exec(`CREATE TABLE brains (id TEXT PRIMARY KEY, link TEXT NOT NULL, actor_id TEXT NOT NULL, name TEXT NOT NULL)`)
			return err
		},
	}
}

func ticketProjection() Projection {
	return Projection{
		Name:   "ticket",
		Events: []event.Type{event.TicketIssued},
		Apply: func(db *sql.DB, ev event.Event) error {
			var p event.TicketIssuedPayload
			if err := ev.Decode(&p); err != nil {
				return err
			}
			_, err := db.Exec(`INSERT OR REPLACE INTO tickets (id, brain_id, expires_at) VALUES (?, ?, ?)`,
				p.ID, p.BrainID, p.ExpiresAt)
			return err
		},
		Reset: func(db *sql.DB) error {
			_, err := db.Exec(`DROP TABLE IF EXISTS tickets`)
			if err != nil {
				return err
			}
			_, err = db.Exec(`CREATE TABLE tickets (id TEXT PRIMARY KEY, brain_id TEXT NOT NULL, expires_at TEXT NOT NULL)`)
			return err
		},
	}
}
