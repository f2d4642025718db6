// Package migrator applies and reverts the SQL schema migrations embedded in
// the db package.
//
// Migration files are named {id}-{name}.{up|down}.sql. Applied migrations are
// recorded in the _migrations table, so running a plan again is a no-op.
package migrator
