package db

import (
	"encoding/json"

	"github.com/samber/oops"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/updateinfo-db/pkg/updateinfo"
)

const (
	advisoryBucket = "advisory"
)

// PutAdvisory stores the advisory under its ID. A later advisory with the same ID replaces it.
func (dbc Config) PutAdvisory(tx *bolt.Tx, advisory updateinfo.Advisory) error {
	bkt, err := tx.CreateBucketIfNotExists([]byte(advisoryBucket))
	if err != nil {
		return oops.With("bucket_name", advisoryBucket).Wrapf(err, "failed to create bucket")
	}
	return dbc.put(bkt, advisory.ID, advisory)
}

func (dbc Config) GetAdvisory(id string) (updateinfo.Advisory, error) {
	value, err := dbc.get(advisoryBucket, id)
	if err != nil {
		return updateinfo.Advisory{}, xerrors.Errorf("failed to get advisory %s: %w", id, err)
	} else if value == nil {
		return updateinfo.Advisory{}, xerrors.Errorf("advisory %s: %w", id, ErrNotFound)
	}

	var advisory updateinfo.Advisory
	if err = json.Unmarshal(value, &advisory); err != nil {
		return updateinfo.Advisory{}, xerrors.Errorf("failed to unmarshal advisory %s: %w", id, err)
	}
	return advisory, nil
}

// ForEachAdvisory visits advisories in ID order.
func (dbc Config) ForEachAdvisory(fn func(advisory updateinfo.Advisory) error) error {
	eb := oops.With("bucket_name", advisoryBucket)
	err := db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(advisoryBucket))
		if bkt == nil {
			return nil
		}
		return bkt.ForEach(func(id, v []byte) error {
			var advisory updateinfo.Advisory
			if err := json.Unmarshal(v, &advisory); err != nil {
				return eb.With("advisory_id", string(id)).Wrapf(err, "json unmarshal error")
			}
			return fn(advisory)
		})
	})
	if err != nil {
		return eb.Wrapf(err, "for each error")
	}
	return nil
}

func (dbc Config) getAdvisories(ids []string) ([]updateinfo.Advisory, error) {
	var advisories []updateinfo.Advisory
	for _, id := range ids {
		advisory, err := dbc.GetAdvisory(id)
		if err != nil {
			return nil, err
		}
		advisories = append(advisories, advisory)
	}
	return advisories, nil
}
