// Package probe discovers the extent of a tiled cube pyramid by issuing trial
// fetches and downloads every tile it finds.
//
// There is no manifest: the maximum zoom level is the highest level whose
// tile (face 0, row 0, col 0) exists, and a face's grid is the set of rows
// whose column 0 exists, each row extending to its first absent column.
// Only an authoritative absence ends a scan. Transient failures that survive
// the fetcher's retries abort the whole download, so a partial cube is never
// returned.
//
// The six faces are scanned concurrently. Within a row, columns are fetched
// in windows; the row length is decided only after every fetch in the window
// has completed, so a fast absent answer cannot cut off a slower tile that
// precedes it.
package probe
