package postgres

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrate struct {
	upErr, downErr     error
	version            uint
	dirty              bool
	versionErr         error
	srcClose, dbClose  error
	upCalls, downCalls int
}

func (f *fakeMigrate) Up() error   { f.upCalls++; return f.upErr }
func (f *fakeMigrate) Down() error { f.downCalls++; return f.downErr }
func (f *fakeMigrate) Version() (uint, bool, error) {
	return f.version, f.dirty, f.versionErr
}
func (f *fakeMigrate) Close() (error, error) { return f.srcClose, f.dbClose }

func TestMigratorUpIgnoresNoChange(t *testing.T) {
	f := &fakeMigrate{upErr: migrate.ErrNoChange}
	m := &Migrator{m: f}

	require.NoError(t, m.Up())
	assert.Equal(t, 1, f.upCalls)
}

func TestMigratorUpFailure(t *testing.T) {
	boom := errors.New("syntax error")
	m := &Migrator{m: &fakeMigrate{upErr: boom}}

	assert.ErrorIs(t, m.Up(), boom)
}

func TestMigratorDown(t *testing.T) {
	f := &fakeMigrate{downErr: migrate.ErrNoChange}
	m := &Migrator{m: f}

	require.NoError(t, m.Down())
	assert.Equal(t, 1, f.downCalls)
}

func TestMigratorVersion(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
	v, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.False(t, dirty)

	m = &Migrator{m: &fakeMigrate{version: 2, dirty: true}}
	v, dirty, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)
	assert.True(t, dirty)
}

func TestMigratorClose(t *testing.T) {
	srcErr := errors.New("source")
	dbErr := errors.New("database")
	m := &Migrator{m: &fakeMigrate{srcClose: srcErr, dbClose: dbErr}}

	err := m.Close()
	assert.ErrorIs(t, err, srcErr)
	assert.ErrorIs(t, err, dbErr)

	assert.NoError(t, (&Migrator{m: &fakeMigrate{}}).Close())
}

func TestMigrateURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@localhost/db":   "pgx5://u:p@localhost/db",
		"postgresql://u:p@localhost/db": "pgx5://u:p@localhost/db",
		"pgx5://u:p@localhost/db":       "pgx5://u:p@localhost/db",
	}
	for in, want := range tests {
		assert.Equal(t, want, migrateURL(in), in)
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationsFS, "migrations/*.down.sql")
	require.NoError(t, err)

	assert.Len(t, ups, 2)
	assert.Len(t, downs, len(ups))
}
