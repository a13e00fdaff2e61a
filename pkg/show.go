package pkg

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/urfave/cli"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/updateinfo-db/pkg/db"
	"github.com/aquasecurity/updateinfo-db/pkg/types"
	"github.com/aquasecurity/updateinfo-db/pkg/updateinfo"
)

func show(c *cli.Context) error {
	input := c.String("input")
	if input == "" {
		return xerrors.New("--input is required")
	}

	database, err := updateinfo.Load(input, decodeOptions(c)...)
	if err != nil {
		return xerrors.Errorf("load error: %w", err)
	}

	advisories := database.Advisories
	if id := c.String("id"); id != "" {
		adv, ok := database.Get(id)
		if !ok {
			return xerrors.Errorf("advisory %s: %w", id, db.ErrNotFound)
		}
		advisories = []updateinfo.Advisory{adv}
	}
	if cveID := c.String("cve"); cveID != "" {
		filtered := updateinfo.Database{Advisories: advisories}
		advisories = filtered.ByCVE(cveID)
	}

	for _, adv := range advisories {
		printAdvisory(c.App.Writer, adv, true)
	}
	return nil
}

func fixes(c *cli.Context) error {
	name, installed := c.String("name"), c.String("evr")
	if name == "" || installed == "" {
		return xerrors.New("--name and --evr are required")
	}

	if err := db.Init(c.String("cache-dir")); err != nil {
		return xerrors.Errorf("db initialize error: %w", err)
	}
	defer db.Close()

	advisories, err := db.Config{}.GetFixes(name, c.String("arch"), installed)
	if err != nil {
		return xerrors.Errorf("fixes error: %w", err)
	}
	sortBySeverity(advisories)
	for _, adv := range advisories {
		printAdvisory(c.App.Writer, adv, false)
	}
	return nil
}

func printMetadata(c *cli.Context) error {
	if err := db.Init(c.String("cache-dir")); err != nil {
		return xerrors.Errorf("db initialize error: %w", err)
	}
	defer db.Close()

	meta, err := db.Config{}.GetMetadata()
	if err != nil {
		return xerrors.Errorf("metadata error: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Version: %d\nSource: %s\nAdvisories: %d\nUpdatedAt: %s\n",
		meta.Version, meta.Source, meta.Advisories, meta.UpdatedAt)
	return nil
}

// sortBySeverity puts the most severe advisories first, keeping the ID order within a level.
func sortBySeverity(advisories []updateinfo.Advisory) {
	sort.SliceStable(advisories, func(i, j int) bool {
		return types.CompareSeverityString(advisories[i].Severity.String(), advisories[j].Severity.String()) < 0
	})
}

func printAdvisory(w io.Writer, adv updateinfo.Advisory, verbose bool) {
	fmt.Fprintf(w, "%s [%s] %s\n", adv.ID, types.ColorizeSeverity(adv.Severity), adv.Title)
	if !verbose {
		return
	}
	if len(adv.CVEs) > 0 {
		fmt.Fprintf(w, "  CVEs: %s\n", strings.Join(adv.CVEs, ", "))
	}
	for _, pkg := range adv.Packages {
		fmt.Fprintf(w, "  %s\n", pkg.NEVRA())
	}
}
