package updateinfo

import (
	"fmt"

	version "github.com/knqyf263/go-rpm-version"
	"github.com/samber/lo"

	"github.com/aquasecurity/updateinfo-db/pkg/types"
)

// Database holds the advisories of one updateinfo document in document order.
type Database struct {
	Advisories []Advisory `json:"db" yaml:"db" toml:"db"`
}

type Advisory struct {
	ID          string         `json:"id" yaml:"id" toml:"id"`
	Title       string         `json:"title" yaml:"title" toml:"title"`
	Severity    types.Severity `json:"severity" yaml:"severity" toml:"severity"`
	Release     string         `json:"release" yaml:"release" toml:"release"` // product, e.g. openEuler
	CVEs        []string       `json:"cves" yaml:"cves" toml:"cves"`
	Description string         `json:"description" yaml:"description" toml:"description"`
	Packages    []Package      `json:"pkglist" yaml:"pkglist" toml:"pkglist"`
}

// Package is an RPM fixed by an advisory.
type Package struct {
	Name     string  `json:"name" yaml:"name" toml:"name"`
	Epoch    *string `json:"epoch,omitempty" yaml:"epoch,omitempty" toml:"epoch,omitempty"` // nil when the feed has no epoch
	Version  string  `json:"version" yaml:"version" toml:"version"`
	Release  string  `json:"release" yaml:"release" toml:"release"`
	Arch     string  `json:"arch" yaml:"arch" toml:"arch"`
	File     string  `json:"file" yaml:"file" toml:"file"`
	Advisory string  `json:"sa" yaml:"sa" toml:"sa"` // ID of the advisory that lists this package
}

// EVR returns "epoch:version-release", or "version-release" without an epoch.
func (p Package) EVR() string {
	if p.Epoch != nil {
		return fmt.Sprintf("%s:%s-%s", *p.Epoch, p.Version, p.Release)
	}
	return fmt.Sprintf("%s-%s", p.Version, p.Release)
}

// NEVRA returns "name-EVR-arch".
func (p Package) NEVRA() string {
	return fmt.Sprintf("%s-%s-%s", p.Name, p.EVR(), p.Arch)
}

// Fixes reports whether installing this package upgrades the given installed EVR.
func (p Package) Fixes(installed string) bool {
	return version.NewVersion(p.EVR()).Compare(version.NewVersion(installed)) > 0
}

func (d *Database) Len() int {
	return len(d.Advisories)
}

// Get returns the first advisory with the given ID.
func (d *Database) Get(id string) (Advisory, bool) {
	return lo.Find(d.Advisories, func(a Advisory) bool {
		return a.ID == id
	})
}

// ByCVE returns the advisories referencing the CVE, in document order.
func (d *Database) ByCVE(cveID string) []Advisory {
	return lo.Filter(d.Advisories, func(a Advisory, _ int) bool {
		return lo.Contains(a.CVEs, cveID)
	})
}

// Packages flattens the package lists of all advisories.
func (d *Database) Packages() []Package {
	return lo.FlatMap(d.Advisories, func(a Advisory, _ int) []Package {
		return a.Packages
	})
}
