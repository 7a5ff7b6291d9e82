package model

import "time"

// Artifact is an in-memory image produced by a stitcher.
type Artifact struct {
	Name     string `json:"name"`
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
}

// FileRecord describes one persisted file belonging to a conversion.
type FileRecord struct {
	// ID is the storage identifier of the file.
	ID int64 `json:"id"`

	// ConversionID links the file to its conversion.
	ConversionID string `json:"conversion_id"`

	// Name is the file name (tile name or result name).
	Name string `json:"name"`

	// MIMEType is the media type of the stored bytes.
	MIMEType string `json:"mime_type"`

	// Size is the number of stored bytes.
	Size int64 `json:"size"`

	// Digest is the hex SHA3-256 of the stored bytes.
	Digest string `json:"digest"`

	// CreatedAt is when the file was stored.
	CreatedAt time.Time `json:"created_at"`
}
