// Package state persists driver state in SQLite: the history of adjustment
// operations and the last payload applied per application.
//
// The store holds a file lock for its lifetime so that two driver invocations
// cannot mutate the same application concurrently. The database is transient
// operational state, not an archive; schema changes bump the version in
// schema.go and users clear the state directory to adopt the new schema.
package state
