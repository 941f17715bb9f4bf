// Package postgres persists users and refresh tokens in PostgreSQL through
// pgx.
//
// The schema ships as embedded golang-migrate migrations; run [Migrator.Up]
// before serving traffic. Unique constraints on email and username back up
// the register lookup, so a concurrent duplicate fails with
// [ErrDuplicateUser] instead of creating a second identity.
package postgres
