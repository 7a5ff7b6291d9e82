package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/nao1215/cubegrab/internal/model"
)

// BoltFileName is the database file created in the store directory.
const BoltFileName = "cubegrab.bolt"

var (
	bucketBlobs   = []byte("blobs")
	bucketFiles   = []byte("files")
	bucketNames   = []byte("file_names")
	bucketReports = []byte("reports")
)

// BoltStore is the bbolt implementation of Store.
//
// Files and reports are keyed by their big-endian sequence number, so
// cursor order is insertion order. file_names maps "conversion\x00name" to
// the file key to keep names unique per conversion.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens or creates the bbolt store in dir.
func OpenBolt(dir string) (*BoltStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(filepath.Join(dir, BoltFileName), 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketBlobs, bucketFiles, bucketNames, bucketReports} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func encodeKey(id uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	return buf[:]
}

func nameKey(conversionID, name string) []byte {
	return []byte(conversionID + "\x00" + name)
}

// SaveFile implements Store.
func (s *BoltStore) SaveFile(_ context.Context, conversionID, name string, data []byte, mimeType string) (*model.FileRecord, error) {
	rec := &model.FileRecord{
		ConversionID: conversionID,
		Name:         name,
		MIMEType:     mimeType,
		Size:         int64(len(data)),
		Digest:       Digest(data),
		CreatedAt:    time.Now().UTC(),
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		blobs := tx.Bucket(bucketBlobs)
		if blobs.Get([]byte(rec.Digest)) == nil {
			if err := blobs.Put([]byte(rec.Digest), data); err != nil {
				return err
			}
		}

		files := tx.Bucket(bucketFiles)
		names := tx.Bucket(bucketNames)
		nk := nameKey(conversionID, name)

		var key []byte
		if existing := names.Get(nk); existing != nil {
			key = bytes.Clone(existing)
		} else {
			seq, err := files.NextSequence()
			if err != nil {
				return err
			}
			key = encodeKey(seq)
			if err := names.Put(nk, key); err != nil {
				return err
			}
		}
		rec.ID = int64(binary.BigEndian.Uint64(key))

		value, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return files.Put(key, value)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	return rec, nil
}

// Files implements Store.
func (s *BoltStore) Files(_ context.Context, conversionID string) ([]model.FileRecord, error) {
	var records []model.FileRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFiles).ForEach(func(_, v []byte) error {
			var rec model.FileRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if rec.ConversionID == conversionID {
				records = append(records, rec)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return records, nil
}

// FileData implements Store.
func (s *BoltStore) FileData(_ context.Context, digest string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBlobs).Get([]byte(digest))
		if v == nil {
			return fmt.Errorf("%w: blob %s", ErrNotFound, digest)
		}
		// Values are only valid inside the transaction.
		data = bytes.Clone(v)
		return nil
	})
	return data, err
}

// SaveReport implements Store.
func (s *BoltStore) SaveReport(_ context.Context, report *model.AcquisitionReport) error {
	value, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketReports)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(encodeKey(seq), value)
	})
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Reports implements Store.
func (s *BoltStore) Reports(_ context.Context, url string, limit int) ([]*model.AcquisitionReport, error) {
	var reports []*model.AcquisitionReport
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketReports).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var report model.AcquisitionReport
			if err := json.Unmarshal(v, &report); err != nil {
				return err
			}
			if url != "" && report.URL != url {
				continue
			}
			reports = append(reports, &report)
			if limit > 0 && len(reports) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}
