package db_test

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/aquasecurity/updateinfo-db/pkg/db"
	"github.com/aquasecurity/updateinfo-db/pkg/dbtest"
	"github.com/aquasecurity/updateinfo-db/pkg/metadata"
	"github.com/aquasecurity/updateinfo-db/pkg/types"
	"github.com/aquasecurity/updateinfo-db/pkg/updateinfo"
)

var fixtureFiles = []string{"testdata/fixtures/updateinfo.yaml"}

func ids(advisories []updateinfo.Advisory) []string {
	if len(advisories) == 0 {
		return nil
	}
	return lo.Map(advisories, func(a updateinfo.Advisory, _ int) string {
		return a.ID
	})
}

func TestInit(t *testing.T) {
	cacheDir := t.TempDir()
	require.NoError(t, db.Init(cacheDir))
	require.NoError(t, db.Close())
	assert.FileExists(t, db.Path(cacheDir))
}

func TestConfig_GetAdvisory(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		want    updateinfo.Advisory
		wantErr error
	}{
		{
			name: "happy path",
			id:   "openEuler-SA-2022-1587",
			want: updateinfo.Advisory{
				ID:          "openEuler-SA-2022-1587",
				Title:       "An update for mariadb is now available for openEuler-22.03-LTS",
				Severity:    types.SeverityImportant,
				Release:     "openEuler",
				CVEs:        []string{"CVE-2021-46659", "CVE-2021-46663"},
				Description: "MariaDB fixes.",
				Packages: []updateinfo.Package{
					{
						Name:     "mariadb",
						Version:  "10.5.16",
						Release:  "1.oe2203",
						Arch:     "x86_64",
						File:     "mariadb-10.5.16-1.oe2203.x86_64.rpm",
						Advisory: "openEuler-SA-2022-1587",
					},
				},
			},
		},
		{
			name:    "unknown advisory",
			id:      "openEuler-SA-1999-0001",
			wantErr: db.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_ = dbtest.InitDB(t, fixtureFiles)
			defer db.Close()

			got, err := db.Config{}.GetAdvisory(tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_GetAdvisoriesByCVE(t *testing.T) {
	tests := []struct {
		name    string
		cveID   string
		want    []string
		wantErr string
	}{
		{
			name:  "single advisory",
			cveID: "CVE-2021-46659",
			want:  []string{"openEuler-SA-2022-1587"},
		},
		{
			name:  "multiple advisories",
			cveID: "CVE-2021-46663",
			want:  []string{"openEuler-SA-2022-1587", "openEuler-SA-2022-1700"},
		},
		{
			name:  "unknown CVE",
			cveID: "CVE-2000-0001",
		},
		{
			name:    "dangling advisory",
			cveID:   "CVE-2022-0001",
			wantErr: "openEuler-SA-2099-0001",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_ = dbtest.InitDB(t, fixtureFiles)
			defer db.Close()

			got, err := db.Config{}.GetAdvisoriesByCVE(tt.cveID)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestConfig_GetFixes(t *testing.T) {
	tests := []struct {
		name      string
		pkgName   string
		arch      string
		installed string
		want      []string
	}{
		{
			name:      "both builds are newer",
			pkgName:   "mariadb",
			installed: "10.5.13-1.oe2203",
			want:      []string{"openEuler-SA-2022-1587", "openEuler-SA-2022-1700"},
		},
		{
			name:      "arch filter",
			pkgName:   "mariadb",
			arch:      "x86_64",
			installed: "10.5.13-1.oe2203",
			want:      []string{"openEuler-SA-2022-1587"},
		},
		{
			name:      "partially patched",
			pkgName:   "mariadb",
			installed: "10.5.16-1.oe2203",
			want:      []string{"openEuler-SA-2022-1700"},
		},
		{
			name:      "up to date",
			pkgName:   "mariadb",
			installed: "10.5.18-1.oe2203",
		},
		{
			name:      "unknown package",
			pkgName:   "bash",
			installed: "5.1-1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_ = dbtest.InitDB(t, fixtureFiles)
			defer db.Close()

			got, err := db.Config{}.GetFixes(tt.pkgName, tt.arch, tt.installed)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestConfig_GetMetadata(t *testing.T) {
	_ = dbtest.InitDB(t, fixtureFiles)
	defer db.Close()

	got, err := db.Config{}.GetMetadata()
	require.NoError(t, err)
	assert.Equal(t, metadata.Metadata{
		Version:    1,
		Source:     "updateinfo.xml",
		Advisories: 2,
		UpdatedAt:  time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC),
	}, got)
}

func TestConfig_Put(t *testing.T) {
	cacheDir := t.TempDir()
	require.NoError(t, db.Init(cacheDir))
	defer db.Close()

	dbc := db.Config{}
	adv := updateinfo.Advisory{
		ID:       "openEuler-SA-2022-1600",
		Severity: types.SeverityCritical,
		CVEs:     []string{"CVE-2022-0396"},
		Packages: []updateinfo.Package{
			{
				Name:     "bind",
				Epoch:    lo.ToPtr("32"),
				Version:  "9.16.23",
				Release:  "1.oe2203",
				Arch:     "x86_64",
				Advisory: "openEuler-SA-2022-1600",
			},
		},
	}

	err := dbc.BatchUpdate(func(tx *bolt.Tx) error {
		if err := dbc.PutAdvisory(tx, adv); err != nil {
			return err
		}
		if err := dbc.PutPackage(tx, adv.Packages[0]); err != nil {
			return err
		}
		// the same pair twice is stored once
		for range 2 {
			if err := dbc.PutCVE(tx, "CVE-2022-0396", adv.ID); err != nil {
				return err
			}
		}
		return dbc.PutCVE(tx, "CVE-2022-0396", "openEuler-SA-2022-1599")
	})
	require.NoError(t, err)

	got, err := dbc.GetAdvisory(adv.ID)
	require.NoError(t, err)
	assert.Equal(t, adv, got)

	pkgs, err := dbc.GetPackages("bind")
	require.NoError(t, err)
	assert.Equal(t, adv.Packages, pkgs)

	var visited []string
	require.NoError(t, dbc.ForEachAdvisory(func(a updateinfo.Advisory) error {
		visited = append(visited, a.ID)
		return nil
	}))
	assert.Equal(t, []string{adv.ID}, visited)

	require.NoError(t, db.Close())
	dbPath := db.Path(cacheDir)
	dbtest.JSONEq(t, dbPath, []string{"cve", "CVE-2022-0396"},
		[]string{"openEuler-SA-2022-1599", "openEuler-SA-2022-1600"})
	dbtest.JSONEq(t, dbPath, []string{"package", "bind", "openEuler-SA-2022-1600/bind-32:9.16.23-1.oe2203-x86_64"},
		adv.Packages[0])
	dbtest.NoBucket(t, dbPath, []string{"package", "mariadb"})
}

func TestConfig_Reset(t *testing.T) {
	cacheDir := dbtest.InitDB(t, fixtureFiles)
	require.NoError(t, db.Config{}.Reset())
	require.NoError(t, db.Close())

	dbPath := db.Path(cacheDir)
	for _, bkt := range []string{"advisory", "package", "cve", "updateinfo"} {
		dbtest.NoBucket(t, dbPath, []string{bkt}, bkt)
	}
}
