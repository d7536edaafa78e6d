// Package catalog persists a record of every image extracted from an .itc
// file, backed by SQLite. A lock file beside the database enforces a single
// writing process; concurrent itcx runs against the same catalog fail fast
// instead of interleaving writes.
package catalog
