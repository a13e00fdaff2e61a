package db

import (
	"encoding/json"
	"sort"

	"github.com/samber/lo"
	"github.com/samber/oops"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/updateinfo-db/pkg/updateinfo"
)

const (
	cveBucket = "cve"
)

var ErrNotFound = xerrors.New("not found")

// PutCVE adds advisoryID to the sorted set of advisories referencing cveID.
func (dbc Config) PutCVE(tx *bolt.Tx, cveID, advisoryID string) error {
	eb := oops.With("bucket_name", cveBucket).With("cve_id", cveID)
	bkt, err := tx.CreateBucketIfNotExists([]byte(cveBucket))
	if err != nil {
		return eb.Wrapf(err, "failed to create bucket")
	}

	var ids []string
	if v := bkt.Get([]byte(cveID)); v != nil {
		if err = json.Unmarshal(v, &ids); err != nil {
			return eb.Wrapf(err, "json unmarshal error")
		}
	}
	ids = lo.Uniq(append(ids, advisoryID))
	sort.Strings(ids)

	return dbc.put(bkt, cveID, ids)
}

func (dbc Config) getCVE(cveID string) ([]string, error) {
	value, err := dbc.get(cveBucket, cveID)
	if err != nil {
		return nil, err
	} else if value == nil {
		return nil, nil
	}

	var ids []string
	if err = json.Unmarshal(value, &ids); err != nil {
		return nil, xerrors.Errorf("failed to unmarshal %s: %w", cveID, err)
	}
	return ids, nil
}

// GetAdvisoriesByCVE returns the advisories referencing the CVE, ordered by advisory ID.
func (dbc Config) GetAdvisoriesByCVE(cveID string) ([]updateinfo.Advisory, error) {
	ids, err := dbc.getCVE(cveID)
	if err != nil {
		return nil, xerrors.Errorf("failed to get %s: %w", cveID, err)
	}
	advisories, err := dbc.getAdvisories(ids)
	if err != nil {
		return nil, xerrors.Errorf("failed to get advisories of %s: %w", cveID, err)
	}
	return advisories, nil
}
