package pkg

import (
	"github.com/urfave/cli"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/updateinfo-db/pkg/db"
	"github.com/aquasecurity/updateinfo-db/pkg/log"
	"github.com/aquasecurity/updateinfo-db/pkg/updateinfo"
	"github.com/aquasecurity/updateinfo-db/pkg/vulndb"
)

func build(c *cli.Context) error {
	input := c.String("input")
	if input == "" {
		return xerrors.New("--input is required")
	}

	cacheDir := c.String("cache-dir")
	if err := db.Init(cacheDir); err != nil {
		return xerrors.Errorf("db initialize error: %w", err)
	}
	defer db.Close()

	opts := []vulndb.Option{
		vulndb.WithDecodeOptions(decodeOptions(c)...),
	}
	if c.Bool("quiet") {
		opts = append(opts, vulndb.WithProgress(nil))
	}
	if err := vulndb.New(cacheDir, opts...).Build(input); err != nil {
		return xerrors.Errorf("build error: %w", err)
	}

	log.Info("Database built", log.FilePath(db.Path(cacheDir)))
	return nil
}

func decodeOptions(c *cli.Context) []updateinfo.Option {
	if c.Bool("strict") {
		return []updateinfo.Option{updateinfo.Strict()}
	}
	return nil
}
