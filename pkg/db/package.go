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
	packageBucket = "package"
)

// PutPackage stores pkg under package -> name -> "<advisory ID>/<NEVRA>".
func (dbc Config) PutPackage(tx *bolt.Tx, pkg updateinfo.Package) error {
	eb := oops.With("bucket_name", packageBucket).With("package_name", pkg.Name)
	root, err := tx.CreateBucketIfNotExists([]byte(packageBucket))
	if err != nil {
		return eb.Wrapf(err, "failed to create bucket")
	}
	nested, err := root.CreateBucketIfNotExists([]byte(pkg.Name))
	if err != nil {
		return eb.Wrapf(err, "failed to create nested bucket")
	}
	return dbc.put(nested, packageKey(pkg), pkg)
}

func packageKey(pkg updateinfo.Package) string {
	return pkg.Advisory + "/" + pkg.NEVRA()
}

// GetPackages returns every fixed package with the given name, ordered by advisory ID.
func (dbc Config) GetPackages(name string) ([]updateinfo.Package, error) {
	var pkgs []updateinfo.Package
	err := db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(packageBucket))
		if root == nil {
			return nil
		}
		nested := root.Bucket([]byte(name))
		if nested == nil {
			return nil
		}
		return nested.ForEach(func(k, v []byte) error {
			var pkg updateinfo.Package
			if err := json.Unmarshal(v, &pkg); err != nil {
				return xerrors.Errorf("failed to unmarshal package %s: %w", string(k), err)
			}
			pkgs = append(pkgs, pkg)
			return nil
		})
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to get packages of %s: %w", name, err)
	}
	return pkgs, nil
}

// GetFixes returns the advisories shipping a build of name newer than the installed EVR.
// An empty arch matches every architecture; "noarch" builds match any arch.
func (dbc Config) GetFixes(name, arch, installed string) ([]updateinfo.Advisory, error) {
	pkgs, err := dbc.GetPackages(name)
	if err != nil {
		return nil, err
	}

	pkgs = lo.Filter(pkgs, func(pkg updateinfo.Package, _ int) bool {
		if arch != "" && pkg.Arch != arch && pkg.Arch != "noarch" {
			return false
		}
		return pkg.Advisory != "" && pkg.Fixes(installed)
	})

	ids := lo.Uniq(lo.Map(pkgs, func(pkg updateinfo.Package, _ int) string {
		return pkg.Advisory
	}))
	sort.Strings(ids)

	advisories, err := dbc.getAdvisories(ids)
	if err != nil {
		return nil, xerrors.Errorf("failed to get fixes for %s: %w", name, err)
	}
	return advisories, nil
}
