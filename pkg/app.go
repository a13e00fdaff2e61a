package pkg

import (
	"log/slog"
	"strings"

	"github.com/urfave/cli"

	"github.com/aquasecurity/updateinfo-db/pkg/export"
	"github.com/aquasecurity/updateinfo-db/pkg/log"
	"github.com/aquasecurity/updateinfo-db/pkg/utils"
)

func NewApp(version string) *cli.App {
	app := cli.NewApp()
	app.Name = "updateinfo-db"
	app.Version = version
	app.Usage = "updateinfo advisory database"

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
	}
	app.Before = func(c *cli.Context) error {
		if c.Bool("debug") {
			log.SetLevel(slog.LevelDebug)
		}
		return nil
	}

	cacheDirFlag := cli.StringFlag{
		Name:   "cache-dir",
		Usage:  "cache directory path",
		Value:  utils.CacheDir(),
		EnvVar: "UPDATEINFO_DB_CACHE_DIR",
	}
	inputFlag := cli.StringFlag{
		Name:  "input, i",
		Usage: "updateinfo XML file",
	}
	strictFlag := cli.BoolFlag{
		Name:  "strict",
		Usage: "fail on a truncated or malformed document instead of keeping the advisories read so far",
	}

	app.Commands = []cli.Command{
		{
			Name:   "build",
			Usage:  "build database",
			Action: build,
			Flags: []cli.Flag{
				inputFlag,
				strictFlag,
				cacheDirFlag,
				cli.BoolFlag{
					Name:  "quiet, q",
					Usage: "hide the progress bar",
				},
			},
		},
		{
			Name:   "export",
			Usage:  "decode updateinfo and write it as json, yaml or toml",
			Action: exportDB,
			Flags: []cli.Flag{
				inputFlag,
				strictFlag,
				cli.StringFlag{
					Name:  "output, o",
					Usage: "output file path, stdout when empty",
				},
				cli.StringFlag{
					Name:  "format, f",
					Usage: "output format (" + strings.Join(export.Formats, ", ") + "), guessed from --output when empty",
				},
			},
		},
		{
			Name:   "show",
			Usage:  "print advisories of updateinfo files",
			Action: show,
			Flags: []cli.Flag{
				inputFlag,
				strictFlag,
				cli.StringFlag{
					Name:  "id",
					Usage: "print only this advisory",
				},
				cli.StringFlag{
					Name:  "cve",
					Usage: "print only advisories referencing this CVE",
				},
			},
		},
		{
			Name:   "fixes",
			Usage:  "list advisories fixing an installed package",
			Action: fixes,
			Flags: []cli.Flag{
				cacheDirFlag,
				cli.StringFlag{
					Name:  "name",
					Usage: "package name",
				},
				cli.StringFlag{
					Name:  "arch",
					Usage: "package architecture, any when empty",
				},
				cli.StringFlag{
					Name:  "evr",
					Usage: "installed [epoch:]version-release",
				},
			},
		},
		{
			Name:   "metadata",
			Usage:  "print metadata of the built database",
			Action: printMetadata,
			Flags:  []cli.Flag{cacheDirFlag},
		},
	}

	return app
}
