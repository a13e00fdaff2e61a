package db

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/oops"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/updateinfo-db/pkg/log"
	"github.com/aquasecurity/updateinfo-db/pkg/metadata"
)

const (
	SchemaVersion = 1

	metadataBucket = "updateinfo"
	metadataKey    = "metadata"
)

var (
	db    *bolt.DB
	dbDir string
)

type Config struct {
}

func Init(cacheDir string) (err error) {
	dbPath := Path(cacheDir)
	dbDir = filepath.Dir(dbPath)
	if err = os.MkdirAll(dbDir, 0700); err != nil {
		return xerrors.Errorf("failed to mkdir: %w", err)
	}

	log.Debug("Opening the database", log.FilePath(dbPath))
	db, err = bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return xerrors.Errorf("failed to open db: %w", err)
	}
	return nil
}

func Dir(cacheDir string) string {
	return filepath.Join(cacheDir, "db")
}

func Path(cacheDir string) string {
	return filepath.Join(Dir(cacheDir), "updateinfo.db")
}

func Close() error {
	// Skip closing the database if the connection is not established.
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return xerrors.Errorf("failed to close DB: %w", err)
	}
	return nil
}

func (dbc Config) BatchUpdate(fn func(tx *bolt.Tx) error) error {
	err := db.Batch(fn)
	if err != nil {
		return xerrors.Errorf("error in batch update: %w", err)
	}
	return nil
}

func (dbc Config) PutMetadata(tx *bolt.Tx, meta metadata.Metadata) error {
	bkt, err := tx.CreateBucketIfNotExists([]byte(metadataBucket))
	if err != nil {
		return xerrors.Errorf("unable to create '%s' bucket: %w", metadataBucket, err)
	}
	return dbc.put(bkt, metadataKey, meta)
}

func (dbc Config) GetMetadata() (metadata.Metadata, error) {
	value, err := dbc.get(metadataBucket, metadataKey)
	if err != nil {
		return metadata.Metadata{}, err
	} else if value == nil {
		return metadata.Metadata{}, xerrors.Errorf("metadata: %w", ErrNotFound)
	}

	var meta metadata.Metadata
	if err = json.Unmarshal(value, &meta); err != nil {
		return metadata.Metadata{}, xerrors.Errorf("failed to unmarshal metadata: %w", err)
	}
	return meta, nil
}

func (dbc Config) put(bkt *bolt.Bucket, key string, value interface{}) error {
	v, err := json.Marshal(value)
	if err != nil {
		return oops.With("key", key).Wrapf(err, "json marshal error")
	}
	return bkt.Put([]byte(key), v)
}

// get copies the value since bolt only guarantees it for the lifetime of the transaction.
func (dbc Config) get(bucketName, key string) (value []byte, err error) {
	err = db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(bucketName))
		if bkt == nil {
			return nil
		}
		if v := bkt.Get([]byte(key)); v != nil {
			value = make([]byte, len(v))
			copy(value, v)
		}
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to get data from db: %w", err)
	}
	return value, nil
}

func (dbc Config) deleteBucket(bucketName string) error {
	return db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil && err != bolt.ErrBucketNotFound {
			return xerrors.Errorf("failed to delete bucket: %w", err)
		}
		return nil
	})
}

// Reset drops every bucket so the database can be rebuilt from scratch.
func (dbc Config) Reset() error {
	for _, name := range []string{advisoryBucket, packageBucket, cveBucket, metadataBucket} {
		if err := dbc.deleteBucket(name); err != nil {
			return oops.With("bucket", name).Wrapf(err, "reset error")
		}
	}
	return nil
}
