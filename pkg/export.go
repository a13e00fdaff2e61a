package pkg

import (
	"github.com/spf13/afero"
	"github.com/urfave/cli"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/updateinfo-db/pkg/export"
	"github.com/aquasecurity/updateinfo-db/pkg/log"
	"github.com/aquasecurity/updateinfo-db/pkg/updateinfo"
)

func exportDB(c *cli.Context) error {
	input := c.String("input")
	if input == "" {
		return xerrors.New("--input is required")
	}

	output := c.String("output")
	format := export.FormatFromPath(output)
	if f := c.String("format"); f != "" {
		var err error
		if format, err = export.ParseFormat(f); err != nil {
			return err
		}
	}

	database, err := updateinfo.Load(input, decodeOptions(c)...)
	if err != nil {
		return xerrors.Errorf("load error: %w", err)
	}

	if output == "" {
		return export.Encode(c.App.Writer, format, database)
	}

	if err = export.NewFs(afero.NewOsFs()).Write(output, format, database); err != nil {
		return xerrors.Errorf("export error: %w", err)
	}
	log.Info("Exported", log.FilePath(output), log.String("format", string(format)), log.Int("advisories", database.Len()))
	return nil
}
