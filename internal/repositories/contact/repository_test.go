package contact

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedQuery struct {
	query string
	args  []any
}

// fakeDB satisfies database.DB and records every query it sees.
type fakeDB struct {
	gets      []capturedQuery
	execs     []capturedQuery
	existing  string
	execErrs  []error
	execCalls int
}

func (f *fakeDB) GetContext(_ context.Context, dest any, query string, args ...any) error {
	f.gets = append(f.gets, capturedQuery{query: query, args: args})
	if f.existing == "" {
		return errors.New("sql: no rows in result set")
	}
	*dest.(*string) = f.existing
	return nil
}

func (f *fakeDB) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	f.execs = append(f.execs, capturedQuery{query: query, args: args})
	f.execCalls++
	if len(f.execErrs) >= f.execCalls {
		return nil, f.execErrs[f.execCalls-1]
	}
	return nil, nil
}

func (f *fakeDB) SelectContext(context.Context, any, string, ...any) error { return nil }
func (f *fakeDB) QueryxContext(context.Context, string, ...any) (*sqlx.Rows, error) {
	return nil, nil
}
func (f *fakeDB) PingContext(context.Context) error { return nil }

func newTestRepository(db *fakeDB) *Repository {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return NewRepository(db, logger)
}

func TestFindOrCreate_IdentityIsLastNameAndZip(t *testing.T) {
	db := &fakeDB{}
	repo := newTestRepository(db)

	id, err := repo.FindOrCreate(context.Background(), "agency-1", "John", "Smith", "90210")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.Len(t, db.gets, 1)
	find := db.gets[0]
	assert.Contains(t, find.query, "LOWER(last_name)")
	assert.NotContains(t, find.query, "first_name")
	assert.Contains(t, find.args, "smith")
	assert.Contains(t, find.args, "90210")
	assert.NotContains(t, find.args, "john")
}

func TestFindOrCreate_ReturnsExistingContact(t *testing.T) {
	db := &fakeDB{existing: "contact-7"}
	repo := newTestRepository(db)

	id, err := repo.FindOrCreate(context.Background(), "agency-1", "Jane", "Smith", "90210")
	require.NoError(t, err)
	assert.Equal(t, "contact-7", id)
	assert.Empty(t, db.execs, "existing contact should not trigger an insert")
}

func TestFindOrCreate_InsertRecordsFirstName(t *testing.T) {
	db := &fakeDB{}
	repo := newTestRepository(db)

	_, err := repo.FindOrCreate(context.Background(), "agency-1", " John ", "Smith", "90210")
	require.NoError(t, err)

	require.Len(t, db.execs, 1)
	insert := db.execs[0]
	assert.True(t, strings.HasPrefix(insert.query, "INSERT INTO contacts"))
	assert.Contains(t, insert.args, "John")
}

func TestFindOrCreate_RecoversFromUniqueViolation(t *testing.T) {
	db := &fakeDB{execErrs: []error{&pq.Error{Code: "23505"}}}
	repo := newTestRepository(db)

	_, err := repo.FindOrCreate(context.Background(), "agency-1", "John", "Smith", "90210")
	require.NoError(t, err)
	assert.Len(t, db.gets, 2, "insert collision should re-run the find")
}
