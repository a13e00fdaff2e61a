package dbtest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/xerrors"
)

var (
	ErrNoBucket = xerrors.New("no such bucket")
)

// JSONEq compares the value stored under key, the last element being the key and the others
// the bucket path, with want marshaled to JSON.
func JSONEq(t *testing.T, dbPath string, key []string, want interface{}, msgAndArgs ...interface{}) {
	t.Helper()

	wantByte, err := json.Marshal(want)
	require.NoError(t, err, msgAndArgs...)

	got, err := get(dbPath, key)
	require.NoError(t, err, msgAndArgs...)
	require.NotNil(t, got, msgAndArgs...)

	assert.JSONEq(t, string(wantByte), string(got), msgAndArgs...)
}

// NoBucket asserts that the bucket path does not exist.
func NoBucket(t *testing.T, dbPath string, buckets []string, msgAndArgs ...interface{}) {
	t.Helper()

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{ReadOnly: true})
	require.NoError(t, err, msgAndArgs...)
	defer db.Close()

	err = db.View(func(tx *bolt.Tx) error {
		_, err := walk(tx, buckets)
		return err
	})
	assert.ErrorIs(t, err, ErrNoBucket, msgAndArgs...)
}

func get(dbPath string, keys []string) ([]byte, error) {
	if len(keys) < 2 {
		return nil, xerrors.Errorf("malformed keys: %v", keys)
	}
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var b []byte
	err = db.View(func(tx *bolt.Tx) error {
		bkts, key := keys[:len(keys)-1], keys[len(keys)-1]
		bkt, err := walk(tx, bkts)
		if err != nil {
			return err
		}
		if res := bkt.Get([]byte(key)); res != nil {
			b = make([]byte, len(res))
			copy(b, res)
		}
		return nil
	})
	return b, err
}

func walk(tx *bolt.Tx, buckets []string) (*bolt.Bucket, error) {
	if len(buckets) == 0 {
		return nil, xerrors.Errorf("empty bucket path: %w", ErrNoBucket)
	}
	bkt := tx.Bucket([]byte(buckets[0]))
	for _, name := range buckets[1:] {
		if bkt == nil {
			break
		}
		bkt = bkt.Bucket([]byte(name))
	}
	if bkt == nil {
		return nil, xerrors.Errorf("bucket error %v: %w", buckets, ErrNoBucket)
	}
	return bkt, nil
}
