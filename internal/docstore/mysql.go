package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

const closeTimeout = 5 * time.Second

// documentsSchema holds every collection in one table keyed by
// (collection, id) with the record in a JSON column.
const documentsSchema = `CREATE TABLE IF NOT EXISTS documents (
	collection VARCHAR(64)  NOT NULL,
	id         VARCHAR(128) NOT NULL,
	doc        JSON         NOT NULL,
	created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	PRIMARY KEY (collection, id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// fieldName guards the JSON path built for QueryEqual.
var fieldName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// MySQL stores documents in a single JSON table on MySQL 5.7+.
type MySQL struct {
	DB *sql.DB
}

func NewMySQL(db *sql.DB) *MySQL { return &MySQL{DB: db} }

// EnsureSchema creates the documents table when it is missing.
func (m *MySQL) EnsureSchema(ctx context.Context) error {
	_, err := m.DB.ExecContext(ctx, documentsSchema)
	return err
}

func (m *MySQL) Save(ctx context.Context, collection, id string, doc any) (string, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode %s document: %w", collection, err)
	}
	if id == "" {
		id = uuid.NewString()
	}
	_, err = m.DB.ExecContext(ctx,
		"INSERT INTO documents (collection, id, doc) VALUES (?,?,?) ON DUPLICATE KEY UPDATE doc=VALUES(doc)",
		collection, id, string(b))
	if err != nil {
		return "", fmt.Errorf("mysql save %s/%s: %w", collection, id, err)
	}
	return id, nil
}

func (m *MySQL) Get(ctx context.Context, collection, id string) (Snapshot, error) {
	var raw []byte
	err := m.DB.QueryRowContext(ctx,
		"SELECT doc FROM documents WHERE collection=? AND id=? LIMIT 1",
		collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mysql get %s/%s: %w", collection, id, err)
	}
	return jsonSnapshot{id: id, data: raw}, nil
}

func (m *MySQL) GetAll(ctx context.Context, collection string) ([]Snapshot, error) {
	return m.query(ctx,
		"SELECT id, doc FROM documents WHERE collection=? ORDER BY id",
		collection)
}

func (m *MySQL) QueryEqual(ctx context.Context, collection, field string, value any) ([]Snapshot, error) {
	if !fieldName.MatchString(field) {
		return nil, fmt.Errorf("invalid field name %q", field)
	}
	v, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return m.query(ctx,
		"SELECT id, doc FROM documents WHERE collection=? AND JSON_EXTRACT(doc, ?) = CAST(? AS JSON) ORDER BY id",
		collection, "$."+field, string(v))
}

func (m *MySQL) query(ctx context.Context, q string, args ...any) ([]Snapshot, error) {
	rows, err := m.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("mysql query: %w", err)
	}
	defer rows.Close()
	out := make([]Snapshot, 0)
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		out = append(out, jsonSnapshot{id: id, data: raw})
	}
	return out, rows.Err()
}

func (m *MySQL) Delete(ctx context.Context, collection, id string) error {
	if _, err := m.DB.ExecContext(ctx, "DELETE FROM documents WHERE collection=? AND id=?", collection, id); err != nil {
		return fmt.Errorf("mysql delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (m *MySQL) Exists(ctx context.Context, collection, id string) (bool, error) {
	var one int
	err := m.DB.QueryRowContext(ctx,
		"SELECT 1 FROM documents WHERE collection=? AND id=? LIMIT 1",
		collection, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("mysql exists %s/%s: %w", collection, id, err)
	}
	return true, nil
}

func (m *MySQL) Close() error { return m.DB.Close() }
