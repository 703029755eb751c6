package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	_ "github.com/mattn/go-sqlite3"
)

// Source implements ports.Dataset over a dialogue database.
//
// The layout follows the exported game database: dentries holds dialogue
// entries keyed by (conversationid, id), dlinks the links between them, and
// checks / alternates hang off entry keys. Actor names come from actors.
type Source struct {
	db *sql.DB
}

// Open opens an existing database read-only.
func Open(path string) (*Source, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrSourceUnavailable, path, err)
	}
	return &Source{db: db}, nil
}

// Create opens or creates a writable database and makes sure the schema exists.
func Create(path string) (*Source, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Source{db: db}, nil
}

// NewFromDB wraps an existing connection pool.
func NewFromDB(db *sql.DB) *Source {
	return &Source{db: db}
}

// Close closes the database connection.
func (s *Source) Close() error {
	return s.db.Close()
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrSourceUnavailable, op, err)
}

const nodeColumns = `
	d.conversationid, d.id,
	COALESCE(a.name, ''),
	COALESCE(d.dialoguetext, ''),
	COALESCE(d.hascheck, 0),
	COALESCE(d.hasalts, 0),
	COALESCE(d.conditionstring, '')`

type scanner interface {
	Scan(dest ...any) error
}

func scanNode(row scanner) (domain.DialogueNode, error) {
	var n domain.DialogueNode
	err := row.Scan(
		&n.Key.ConversationID, &n.Key.DialogueID,
		&n.ActorName,
		&n.Text,
		&n.HasCheck,
		&n.HasAlternates,
		&n.ConditionString,
	)
	return n, err
}

// GetNode returns the entry stored under key.
func (s *Source) GetNode(ctx context.Context, key domain.NodeKey) (*domain.DialogueNode, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+nodeColumns+`
		 FROM dentries d LEFT JOIN actors a ON d.actor = a.id
		 WHERE d.conversationid = ? AND d.id = ?`,
		key.ConversationID, key.DialogueID,
	)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("query node "+key.String(), err)
	}
	return &n, nil
}

// GetOutboundEdges returns the links leaving key.
func (s *Source) GetOutboundEdges(ctx context.Context, key domain.NodeKey) ([]domain.DialogueEdge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT destinationconversationid, destinationdialogueid,
		        COALESCE(priority, 0), COALESCE(isconnector, 0)
		 FROM dlinks
		 WHERE originconversationid = ? AND origindialogueid = ?`,
		key.ConversationID, key.DialogueID,
	)
	if err != nil {
		return nil, unavailable("query links of "+key.String(), err)
	}
	defer rows.Close()

	var edges []domain.DialogueEdge
	for rows.Next() {
		e := domain.DialogueEdge{Origin: key}
		if err := rows.Scan(&e.Destination.ConversationID, &e.Destination.DialogueID, &e.Priority, &e.IsConnector); err != nil {
			return nil, unavailable("scan link", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate links", err)
	}
	return edges, nil
}

// GetCheck returns the skill check attached to key.
func (s *Source) GetCheck(ctx context.Context, key domain.NodeKey) (*domain.SkillCheck, error) {
	c := domain.SkillCheck{Key: key}
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(difficulty, 0), COALESCE(skilltype, ''), COALESCE(isred, 0), COALESCE(flagname, '')
		 FROM checks
		 WHERE conversationid = ? AND dialogueid = ?`,
		key.ConversationID, key.DialogueID,
	).Scan(&c.DifficultyCode, &c.SkillType, &c.IsRed, &c.FlagName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("query check "+key.String(), err)
	}
	return &c, nil
}

// GetAlternates returns the alternate lines attached to key.
func (s *Source) GetAlternates(ctx context.Context, key domain.NodeKey) ([]domain.Alternate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(condition, ''), COALESCE(alternateline, '')
		 FROM alternates
		 WHERE conversationid = ? AND dialogueid = ?
		 ORDER BY rowid`,
		key.ConversationID, key.DialogueID,
	)
	if err != nil {
		return nil, unavailable("query alternates of "+key.String(), err)
	}
	defer rows.Close()

	var alts []domain.Alternate
	for rows.Next() {
		a := domain.Alternate{Key: key}
		if err := rows.Scan(&a.Condition, &a.AlternateLine); err != nil {
			return nil, unavailable("scan alternate", err)
		}
		alts = append(alts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate alternates", err)
	}
	return alts, nil
}

// ListConditionalNodes returns the conditional entries of a conversation ordered by dialogue ID.
func (s *Source) ListConditionalNodes(ctx context.Context, conversationID int) ([]domain.DialogueNode, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+nodeColumns+`
		 FROM dentries d LEFT JOIN actors a ON d.actor = a.id
		 WHERE d.conversationid = ? AND COALESCE(d.conditionstring, '') != ''
		 ORDER BY d.id`,
		conversationID,
	)
	if err != nil {
		return nil, unavailable(fmt.Sprintf("query conditional nodes of conversation %d", conversationID), err)
	}
	defer rows.Close()

	var nodes []domain.DialogueNode
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, unavailable("scan node", err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate nodes", err)
	}
	return nodes, nil
}

// ListActors returns the distinct actor names, sorted.
func (s *Source) ListActors(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT name FROM actors WHERE name IS NOT NULL ORDER BY name`)
	if err != nil {
		return nil, unavailable("query actors", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, unavailable("scan actor", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate actors", err)
	}
	return names, nil
}

// likeEscaper makes LIKE treat the keyword literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchDialogues returns spoken lines containing keyword (taken literally,
// ASCII case-insensitive), optionally restricted to one actor. Lines without a
// named speaker are skipped.
func (s *Source) SearchDialogues(ctx context.Context, actor, keyword string) ([]domain.DialogueMatch, error) {
	query := `
		SELECT a.name, d.dialoguetext
		FROM dentries d
		JOIN actors a ON d.actor = a.id
		WHERE COALESCE(a.name, '') != ''
		  AND d.dialoguetext LIKE ? ESCAPE '\'`
	args := []any{"%" + likeEscaper.Replace(keyword) + "%"}
	if actor != "" {
		query += ` AND TRIM(a.name) = TRIM(?) COLLATE NOCASE`
		args = append(args, actor)
	}
	query += ` ORDER BY d.conversationid, d.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("search dialogues", err)
	}
	defer rows.Close()

	var matches []domain.DialogueMatch
	for rows.Next() {
		var m domain.DialogueMatch
		if err := rows.Scan(&m.Actor, &m.Dialogue); err != nil {
			return nil, unavailable("scan match", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate matches", err)
	}
	return matches, nil
}
