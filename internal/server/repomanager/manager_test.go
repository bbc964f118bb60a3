package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/dmitrijs2005/gophauth/internal/server/record"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock
}

func TestNew_Memory(t *testing.T) {
	for _, name := range []string{"", "memory"} {
		m, err := New(Options{Backend: name})
		require.NoError(t, err)

		assert.IsType(t, &record.MemoryBackend{}, m.Backend())
		assert.NoError(t, m.RunMigrations(context.Background()))
		assert.NoError(t, m.Close())
	}
}

func TestNew_Postgres(t *testing.T) {
	db, mock := newDB(t)

	orig := sqlOpen
	t.Cleanup(func() { sqlOpen = orig })

	var gotDriver, gotDSN string
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = driver, dsn
		return db, nil
	}

	m, err := New(Options{Backend: "postgres", DatabaseDSN: "postgres://x"})
	require.NoError(t, err)

	assert.Equal(t, "pgx", gotDriver)
	assert.Equal(t, "postgres://x", gotDSN)
	assert.IsType(t, &record.PostgresBackend{}, m.Backend())

	mock.ExpectClose()
	require.NoError(t, m.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNew_PostgresOpenError(t *testing.T) {
	orig := sqlOpen
	t.Cleanup(func() { sqlOpen = orig })

	sqlOpen = func(string, string) (*sql.DB, error) { return nil, errors.New("bad dsn") }

	_, err := New(Options{Backend: "postgres"})
	assert.ErrorContains(t, err, "bad dsn")
}

func TestNew_DynamoDB(t *testing.T) {
	orig := newDynamoClient
	t.Cleanup(func() { newDynamoClient = orig })

	var got aws.Config
	newDynamoClient = func(cfg aws.Config) record.DynamoAPI {
		got = cfg
		return orig(cfg)
	}

	m, err := New(Options{Backend: "dynamodb", AWS: aws.Config{Region: "eu-west-1"}})
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", got.Region)
	assert.IsType(t, &record.DynamoBackend{}, m.Backend())
	assert.NoError(t, m.RunMigrations(context.Background()))
}

func TestNew_Unknown(t *testing.T) {
	_, err := New(Options{Backend: "redis"})
	assert.EqualError(t, err, `unknown storage backend: "redis"`)
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, got *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if got != db {
			return errors.New("unexpected db")
		}
		gotDir = dir
		return nil
	}

	m := NewPostgresManager(db)
	require.NoError(t, m.RunMigrations(context.Background()))
	assert.Equal(t, ".", gotDir)
}

func TestRunMigrations_PropagatesError(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	sentinel := errors.New("goose failed")
	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return sentinel
	}

	m := NewPostgresManager(db)
	assert.ErrorIs(t, m.RunMigrations(context.Background()), sentinel)
}
