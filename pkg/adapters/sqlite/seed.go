package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS actors (
	id   INTEGER PRIMARY KEY,
	name TEXT
);
CREATE TABLE IF NOT EXISTS dentries (
	conversationid  INTEGER NOT NULL,
	id              INTEGER NOT NULL,
	actor           INTEGER,
	dialoguetext    TEXT,
	conditionstring TEXT,
	hascheck        INTEGER DEFAULT 0,
	hasalts         INTEGER DEFAULT 0,
	PRIMARY KEY (conversationid, id)
);
CREATE TABLE IF NOT EXISTS dlinks (
	originconversationid      INTEGER NOT NULL,
	origindialogueid          INTEGER NOT NULL,
	destinationconversationid INTEGER NOT NULL,
	destinationdialogueid     INTEGER NOT NULL,
	priority                  INTEGER DEFAULT 0,
	isconnector               INTEGER DEFAULT 0
);
CREATE INDEX IF NOT EXISTS dlinks_origin ON dlinks (originconversationid, origindialogueid);
CREATE TABLE IF NOT EXISTS checks (
	conversationid INTEGER NOT NULL,
	dialogueid     INTEGER NOT NULL,
	isred          INTEGER DEFAULT 0,
	difficulty     INTEGER,
	flagname       TEXT,
	skilltype      TEXT,
	PRIMARY KEY (conversationid, dialogueid)
);
CREATE TABLE IF NOT EXISTS alternates (
	conversationid INTEGER NOT NULL,
	dialogueid     INTEGER NOT NULL,
	condition      TEXT,
	alternateline  TEXT
);
`

// Seed writes ds into the database in a single transaction.
// Speakers missing from ds.Actors get fresh actor rows.
func (s *Source) Seed(ctx context.Context, ds domain.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	if err := seed(ctx, tx, ds); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func seed(ctx context.Context, tx *sql.Tx, ds domain.Dataset) error {
	actorIDs := make(map[string]int, len(ds.Actors))
	nextID := 1
	for _, a := range ds.Actors {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO actors (id, name) VALUES (?, ?)`, a.ID, a.Name); err != nil {
			return fmt.Errorf("insert actor %q: %w", a.Name, err)
		}
		actorIDs[a.Name] = a.ID
		if a.ID >= nextID {
			nextID = a.ID + 1
		}
	}

	for _, n := range ds.Nodes {
		var actor sql.NullInt64
		if n.ActorName != "" {
			id, ok := actorIDs[n.ActorName]
			if !ok {
				id = nextID
				nextID++
				if _, err := tx.ExecContext(ctx, `INSERT INTO actors (id, name) VALUES (?, ?)`, id, n.ActorName); err != nil {
					return fmt.Errorf("insert actor %q: %w", n.ActorName, err)
				}
				actorIDs[n.ActorName] = id
			}
			actor = sql.NullInt64{Int64: int64(id), Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO dentries (conversationid, id, actor, dialoguetext, conditionstring, hascheck, hasalts)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			n.Key.ConversationID, n.Key.DialogueID, actor, n.Text, n.ConditionString, n.HasCheck, n.HasAlternates,
		)
		if err != nil {
			return fmt.Errorf("insert node %s: %w", n.Key, err)
		}
	}

	for _, e := range ds.Edges {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO dlinks (originconversationid, origindialogueid, destinationconversationid, destinationdialogueid, priority, isconnector)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			e.Origin.ConversationID, e.Origin.DialogueID, e.Destination.ConversationID, e.Destination.DialogueID, e.Priority, e.IsConnector,
		)
		if err != nil {
			return fmt.Errorf("insert link %s -> %s: %w", e.Origin, e.Destination, err)
		}
	}

	for _, c := range ds.Checks {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO checks (conversationid, dialogueid, isred, difficulty, flagname, skilltype)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			c.Key.ConversationID, c.Key.DialogueID, c.IsRed, c.DifficultyCode, c.FlagName, c.SkillType,
		)
		if err != nil {
			return fmt.Errorf("insert check %s: %w", c.Key, err)
		}
	}

	for _, a := range ds.Alternates {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO alternates (conversationid, dialogueid, condition, alternateline) VALUES (?, ?, ?, ?)`,
			a.Key.ConversationID, a.Key.DialogueID, a.Condition, a.AlternateLine,
		)
		if err != nil {
			return fmt.Errorf("insert alternate %s: %w", a.Key, err)
		}
	}
	return nil
}
