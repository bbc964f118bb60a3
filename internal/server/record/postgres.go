package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
)

// PostgresBackend stores items as JSONB documents in the records table
// created by the embedded migrations. Attributes keep their DynamoDB JSON
// shape so containment queries (@>) match on kind and value together.
type PostgresBackend struct {
	db dbx.DBTX
}

func NewPostgresBackend(db dbx.DBTX) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func sortedNames(item Item) []string {
	names := make([]string, 0, len(item))
	for k := range item {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (p *PostgresBackend) QueryIndex(ctx context.Context, t Table, field string, value Attribute) (Item, bool, error) {
	probe, err := json.Marshal(Item{field: value})
	if err != nil {
		return nil, false, err
	}

	query := `SELECT item FROM records WHERE table_name = $1 AND item @> $2::jsonb LIMIT 1`

	var raw []byte
	err = p.db.QueryRowContext(ctx, query, t.Name, string(probe)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("db error: %w", err)
	}

	var item Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, false, fmt.Errorf("decode item: %w", err)
	}
	return item, true, nil
}

func (p *PostgresBackend) PutItem(ctx context.Context, t Table, item Item) error {
	key, ok := item[t.PrimaryKey]
	if !ok {
		return errors.New("item has no primary key")
	}
	doc, err := json.Marshal(item)
	if err != nil {
		return err
	}

	query := `INSERT INTO records (table_name, pk, item) VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (table_name, pk) DO UPDATE SET item = EXCLUDED.item`

	if _, err := p.db.ExecContext(ctx, query, t.Name, keyText(key), string(doc)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// UpdateItem merges set into the stored document and drops the removed keys
// in one statement. A missing key is created, matching DynamoDB semantics.
func (p *PostgresBackend) UpdateItem(ctx context.Context, t Table, key Attribute, set Item, remove []string) error {
	seed := Item{t.PrimaryKey: key}
	for k, v := range set {
		seed[k] = v
	}
	doc, err := json.Marshal(seed)
	if err != nil {
		return err
	}
	if remove == nil {
		remove = []string{}
	}
	drop, err := json.Marshal(remove)
	if err != nil {
		return err
	}

	query := `INSERT INTO records (table_name, pk, item) VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (table_name, pk) DO UPDATE
		SET item = (records.item || EXCLUDED.item) - ARRAY(SELECT jsonb_array_elements_text($4::jsonb))`

	if _, err := p.db.ExecContext(ctx, query, t.Name, keyText(key), string(doc), string(drop)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
