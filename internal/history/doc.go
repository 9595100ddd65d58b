// Package history records executed adoption plans in a SQLite database so
// past runs, their outcomes, and their action-log locations can be reviewed
// later.
package history
