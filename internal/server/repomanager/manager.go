// Package repomanager opens the record backend selected by configuration
// and owns its lifecycle: migrations on start-up and Close on shutdown.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/dmitrijs2005/gophauth/internal/server/record"
)

// BackendManager vends a record.Backend and exposes a schema migration hook.
type BackendManager interface {
	Backend() record.Backend
	RunMigrations(ctx context.Context) error
	Close() error
}

var (
	// sqlOpen is a seam for testing sql.Open.
	sqlOpen = sql.Open

	newDynamoClient = func(cfg aws.Config) record.DynamoAPI {
		return dynamodb.NewFromConfig(cfg)
	}
)

// Options select and configure the backend.
type Options struct {
	Backend     string
	DatabaseDSN string
	// AWS is used by the dynamodb backend only.
	AWS aws.Config
}

// New returns the manager for o.Backend: memory, postgres or dynamodb.
func New(o Options) (BackendManager, error) {
	switch o.Backend {
	case "", "memory":
		return NewMemoryManager(), nil
	case "postgres":
		db, err := sqlOpen("pgx", o.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		return NewPostgresManager(db), nil
	case "dynamodb":
		return NewDynamoManager(newDynamoClient(o.AWS)), nil
	}
	return nil, fmt.Errorf("unknown storage backend: %q", o.Backend)
}

// MemoryManager keeps records in process memory.
type MemoryManager struct {
	backend *record.MemoryBackend
}

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{backend: record.NewMemoryBackend()}
}

func (m *MemoryManager) Backend() record.Backend             { return m.backend }
func (m *MemoryManager) RunMigrations(context.Context) error { return nil }
func (m *MemoryManager) Close() error                        { return nil }

// DynamoManager stores records in DynamoDB. Tables and their <field>-index
// global secondary indexes are provisioned outside the service.
type DynamoManager struct {
	backend *record.DynamoBackend
}

func NewDynamoManager(client record.DynamoAPI) *DynamoManager {
	return &DynamoManager{backend: record.NewDynamoBackend(client)}
}

func (m *DynamoManager) Backend() record.Backend             { return m.backend }
func (m *DynamoManager) RunMigrations(context.Context) error { return nil }
func (m *DynamoManager) Close() error                        { return nil }
