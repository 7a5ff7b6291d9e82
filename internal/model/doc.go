// Package model defines the core data structures shared by the cubegrab
// acquisition engine.
//
// This package contains the following main types:
//   - Face, FaceNaming: cube face identity and how a provider names faces
//   - Confidence: how strongly a URL looks like a supported panorama
//   - Tile, TileGrid, CubeSet: fetched tiles arranged per face
//   - Conversion, Rotation: the inbound request and its pass-through rotation
//   - Artifact, FileRecord: stitched output and persisted file metadata
//   - AcquisitionReport: the summary recorded for every processed conversion
//
// The models are serializable to JSON for report output and database storage.
package model
