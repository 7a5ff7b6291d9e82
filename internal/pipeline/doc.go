// Package pipeline runs many conversions and hands each finished result to
// a sequence of output steps.
//
// BatchProcessor processes conversions concurrently with errgroup. Every
// conversion is isolated: it owns its fetch counter, schema and grid, and
// its failure never cancels the others. Pipeline then runs the output steps
// (write the panorama, render the report) on each result.
package pipeline
