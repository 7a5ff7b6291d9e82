// Package store persists the files and reports of conversions.
//
// Two backends implement Store:
//   - SQLite (default, via modernc.org/sqlite): a single cubegrab.db file
//     in WAL mode, queried with SQL
//   - bbolt: a single cubegrab.bolt key/value file
//
// File bytes are stored once per SHA3-256 digest, so tiles shared between
// conversions of the same panorama take no extra space. Reports are stored
// as JSON and listed newest first.
package store
