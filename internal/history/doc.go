// Package history records every analysis run in a SQLite database so the UI
// and CLI can show recent work. The database uses WAL mode and embedded,
// versioned migrations.
package history
