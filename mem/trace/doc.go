// Package trace records simulator operations.
//
// Every mutating call made through a session produces one Event: what was
// asked, what happened, and the settled partition table afterwards.
// Recorders store events; Nop drops them and SQLiteRecorder writes them to a
// SQLite database with two tables:
//
//	events      one row per operation (columns named after the Event fields)
//	partitions  the table after each operation, one row per partition
//
// Rows are keyed by the session id and the event sequence number, so one
// database can hold several runs.
package trace
