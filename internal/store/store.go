package store

import (
	"context"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/cubegrab/internal/model"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bbolt"
)

// Store persists conversion files and reports.
type Store interface {
	// SaveFile stores data under (conversionID, name). Saving the same name
	// again for a conversion replaces the record.
	SaveFile(ctx context.Context, conversionID, name string, data []byte, mimeType string) (*model.FileRecord, error)

	// Files lists the records of a conversion in the order they were saved.
	Files(ctx context.Context, conversionID string) ([]model.FileRecord, error)

	// FileData returns the bytes behind a record digest.
	FileData(ctx context.Context, digest string) ([]byte, error)

	// SaveReport stores an acquisition report.
	SaveReport(ctx context.Context, report *model.AcquisitionReport) error

	// Reports lists stored reports newest first. An empty url lists all of
	// them; limit <= 0 means no limit.
	Reports(ctx context.Context, url string, limit int) ([]*model.AcquisitionReport, error)

	// Close releases the underlying database.
	Close() error
}

// Open opens the store of the given backend in dir, creating it if needed.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case BackendSQLite, "":
		return OpenSQLite(dir, DefaultOptions())
	case BackendBolt:
		return OpenBolt(dir)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// Digest returns the hex SHA3-256 of data.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
