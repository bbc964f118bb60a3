package record

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// ErrUnknownField is returned when a lookup names a field outside the schema.
var ErrUnknownField = errors.New("unknown field")

// Table identifies a physical table and its primary key attribute.
type Table struct {
	Name       string
	PrimaryKey string
}

// IndexName is the secondary index used to look items up by field.
func IndexName(field string) string {
	return field + "-index"
}

// Backend is a storage engine able to hold Items.
type Backend interface {
	// QueryIndex returns the first item whose field equals value.
	QueryIndex(ctx context.Context, t Table, field string, value Attribute) (Item, bool, error)
	// PutItem writes a whole item, replacing any item with the same key.
	PutItem(ctx context.Context, t Table, item Item) error
	// UpdateItem sets and removes attributes of one item in a single
	// atomic operation.
	UpdateItem(ctx context.Context, t Table, key Attribute, set Item, remove []string) error
}

// Schema describes one logical table.
type Schema struct {
	Name       string
	PrimaryKey string
	Fields     []string
}

// Store scopes a Backend to one table and field allowlist.
type Store struct {
	backend Backend
	table   Table
	allowed map[string]struct{}
}

// NewStore binds a backend to the table "<prefix><schema.Name>".
func NewStore(b Backend, prefix string, s Schema) *Store {
	allowed := make(map[string]struct{}, len(s.Fields)+1)
	for _, f := range s.Fields {
		allowed[f] = struct{}{}
	}
	allowed[s.PrimaryKey] = struct{}{}

	return &Store{
		backend: b,
		table:   Table{Name: prefix + s.Name, PrimaryKey: s.PrimaryKey},
		allowed: allowed,
	}
}

// Table returns the physical table the store writes to.
func (s *Store) Table() Table { return s.table }

func (s *Store) isAllowed(field string) bool {
	_, ok := s.allowed[field]
	return ok
}

// FindBy returns the fields of the first record whose field equals value.
// A miss is reported through found, never as an error.
func (s *Store) FindBy(ctx context.Context, field string, value any) (Fields, bool, error) {
	if !s.isAllowed(field) {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	a, err := Marshal(value)
	if err != nil {
		return nil, false, err
	}

	item, found, err := s.backend.QueryIndex(ctx, s.table, field, a)
	if err != nil {
		return nil, false, common.Storage(err)
	}
	if !found {
		return nil, false, nil
	}

	fields, err := Untag(s.filter(item))
	if err != nil {
		return nil, false, common.Storage(err)
	}
	return fields, true, nil
}

// Insert writes a new record. Fields outside the allowlist are dropped and
// nil values are omitted.
func (s *Store) Insert(ctx context.Context, fields Fields) error {
	clean := make(Fields, len(fields))
	for k, v := range fields {
		if v == nil || !s.isAllowed(k) {
			continue
		}
		clean[k] = v
	}
	if _, ok := clean[s.table.PrimaryKey]; !ok {
		return fmt.Errorf("missing primary key %s", s.table.PrimaryKey)
	}

	item, err := Tag(clean)
	if err != nil {
		return err
	}
	if err := s.backend.PutItem(ctx, s.table, item); err != nil {
		return common.Storage(err)
	}
	return nil
}

// UpdateField changes one attribute of the record with the given key.
// A nil value removes the attribute.
func (s *Store) UpdateField(ctx context.Context, key any, field string, value any) error {
	return s.UpdateFields(ctx, key, Fields{field: value})
}

// UpdateFields applies all changes to the record with the given key in one
// storage operation. Nil values remove attributes; fields outside the
// allowlist and the primary key itself are ignored.
func (s *Store) UpdateFields(ctx context.Context, key any, changes Fields) error {
	k, err := Marshal(key)
	if err != nil {
		return err
	}

	set := make(Item)
	var remove []string
	for name, v := range changes {
		if name == s.table.PrimaryKey || !s.isAllowed(name) {
			continue
		}
		if v == nil {
			remove = append(remove, name)
			continue
		}
		a, err := Marshal(v)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		set[name] = a
	}
	if len(set) == 0 && len(remove) == 0 {
		return nil
	}
	sort.Strings(remove)

	if err := s.backend.UpdateItem(ctx, s.table, k, set, remove); err != nil {
		return common.Storage(err)
	}
	return nil
}

func (s *Store) filter(item Item) Item {
	out := make(Item, len(item))
	for k, v := range item {
		if s.isAllowed(k) {
			out[k] = v
		}
	}
	return out
}
