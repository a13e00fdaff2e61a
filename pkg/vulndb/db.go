package vulndb

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/afero"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/xerrors"
	pb "gopkg.in/cheggaaa/pb.v1"
	"k8s.io/utils/clock"

	"github.com/aquasecurity/updateinfo-db/pkg/db"
	"github.com/aquasecurity/updateinfo-db/pkg/log"
	"github.com/aquasecurity/updateinfo-db/pkg/metadata"
	"github.com/aquasecurity/updateinfo-db/pkg/updateinfo"
)

type Core struct {
	dbc      db.Config
	fs       afero.Fs
	cacheDir string
	clock    clock.Clock
	output   io.Writer
	decode   []updateinfo.Option
}

type Option func(*Core)

func WithClock(clock clock.Clock) Option {
	return func(core *Core) {
		core.clock = clock
	}
}

// WithFs sets the filesystem metadata.json is written to.
func WithFs(fs afero.Fs) Option {
	return func(core *Core) {
		core.fs = fs
	}
}

// WithDecodeOptions is passed to updateinfo.Load, e.g. updateinfo.Strict().
func WithDecodeOptions(opts ...updateinfo.Option) Option {
	return func(core *Core) {
		core.decode = opts
	}
}

// WithProgress sets where the decoding spinner and the progress bar are drawn. nil disables them.
func WithProgress(w io.Writer) Option {
	return func(core *Core) {
		core.output = w
	}
}

// New returns the builder. db.Init must be called with the same cacheDir beforehand.
func New(cacheDir string, opts ...Option) *Core {
	core := &Core{
		dbc:      db.Config{},
		fs:       afero.NewOsFs(),
		cacheDir: cacheDir,
		clock:    clock.RealClock{},
		output:   os.Stderr,
	}

	for _, opt := range opts {
		opt(core)
	}

	return core
}

// Build decodes the updateinfo file and replaces the database contents with it.
func (c Core) Build(input string) error {
	database, err := c.load(input)
	if err != nil {
		return xerrors.Errorf("load error: %w", err)
	}
	log.Debug("Decoded updateinfo", log.FilePath(input), log.Int("advisories", database.Len()))

	if err = c.Insert(*database, filepath.Base(input)); err != nil {
		return xerrors.Errorf("insert error: %w", err)
	}
	return nil
}

// load decodes the input behind a spinner.
func (c Core) load(input string) (*updateinfo.Database, error) {
	if c.output != nil {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Writer = c.output
		s.Suffix = " Decoding updateinfo..."
		s.Start()
		defer s.Stop()
	}
	return updateinfo.Load(input, c.decode...)
}

// Insert drops the previous contents and stores database. The metadata records source and the build time.
func (c Core) Insert(database updateinfo.Database, source string) error {
	log.Info("Building the advisory database...", log.Int("advisories", database.Len()))
	if err := c.dbc.Reset(); err != nil {
		return xerrors.Errorf("reset error: %w", err)
	}

	bar := pb.New(database.Len())
	if c.output != nil {
		bar.Output = c.output
	} else {
		bar.NotPrint = true
	}
	bar.Start()

	seen := make(map[string]struct{}, database.Len())
	for _, adv := range database.Advisories {
		if _, ok := seen[adv.ID]; ok {
			log.Warn("Duplicate advisory, the later one wins", log.AdvisoryID(adv.ID))
		} else if adv.ID != "" {
			seen[adv.ID] = struct{}{}
		}

		if err := c.dbc.BatchUpdate(func(tx *bolt.Tx) error {
			return c.put(tx, adv)
		}); err != nil {
			return xerrors.Errorf("batch update error: %w", err)
		}
		bar.Increment()
	}
	bar.Finish()

	md := metadata.Metadata{
		Version:    db.SchemaVersion,
		Source:     source,
		Advisories: len(seen),
		UpdatedAt:  c.clock.Now().UTC(),
	}

	err := c.dbc.BatchUpdate(func(tx *bolt.Tx) error {
		return c.dbc.PutMetadata(tx, md)
	})
	if err != nil {
		return xerrors.Errorf("failed to save metadata: %w", err)
	}

	if err = metadata.NewClient(c.fs, db.Dir(c.cacheDir)).Update(md); err != nil {
		return xerrors.Errorf("failed to store metadata: %w", err)
	}
	return nil
}

func (c Core) put(tx *bolt.Tx, adv updateinfo.Advisory) error {
	if adv.ID == "" {
		log.Warn("Skipping an advisory without id", log.String("title", adv.Title))
		return nil
	}
	if err := c.dbc.PutAdvisory(tx, adv); err != nil {
		return xerrors.Errorf("failed to put advisory: %w", err)
	}

	for _, pkg := range adv.Packages {
		if pkg.Name == "" {
			log.Warn("Skipping a package without name", log.AdvisoryID(adv.ID), log.String("file", pkg.File))
			continue
		}
		if err := c.dbc.PutPackage(tx, pkg); err != nil {
			return xerrors.Errorf("failed to put package: %w", err)
		}
	}

	for _, cveID := range adv.CVEs {
		if err := c.dbc.PutCVE(tx, cveID, adv.ID); err != nil {
			return xerrors.Errorf("failed to put CVE: %w", err)
		}
	}
	return nil
}
