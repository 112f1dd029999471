// Package catalog keeps a SQLite history of what subman has downloaded and
// generated.
//
// Rows are grouped by the run ID of the CLI invocation that produced them.
// The catalog is advisory: the files on disk stay authoritative and every
// writer treats catalog errors as warnings.
package catalog
